package inmemdb

import (
	"context"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/forum"
)

type forumRepository struct {
	db *DB
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{db: db}
}

// post must be called with db.mu held.
func (db *DB) post(p forum.Post) forum.Post {
	p.Author = db.summary(p.UserID)
	p.ReplyCount = len(db.replies.all(func(r forum.Reply) bool { return r.PostID == p.ID }))
	return p
}

func (repo *forumRepository) ListPosts(_ context.Context, _ ...core.DBExecutor) ([]forum.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	posts := newestFirst(repo.db.posts.all(nil), func(p forum.Post) time.Time { return p.CreatedAt })
	for i := range posts {
		posts[i] = repo.db.post(posts[i])
	}
	return posts, nil
}

func (repo *forumRepository) GetPost(_ context.Context, id string, _ ...core.DBExecutor) (forum.Post, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.posts.get(id); ok {
		return repo.db.post(p), nil
	}
	return forum.Post{}, forum.ErrPostNotFound
}

func (repo *forumRepository) CreatePost(_ context.Context, p forum.Post, _ ...core.DBExecutor) (forum.Post, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = newID()
	repo.db.posts.put(p.ID, p)
	return p, nil
}

func (repo *forumRepository) DeletePost(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.posts.delete(id) {
		return forum.ErrPostNotFound
	}
	for _, r := range repo.db.replies.all(func(r forum.Reply) bool { return r.PostID == id }) {
		repo.db.replies.delete(r.ID)
	}
	return nil
}

func (repo *forumRepository) ListReplies(_ context.Context, postID string, _ ...core.DBExecutor) ([]forum.Reply, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	replies := repo.db.replies.all(func(r forum.Reply) bool { return r.PostID == postID })
	for i := range replies {
		replies[i].Author = repo.db.summary(replies[i].UserID)
	}
	return replies, nil
}

func (repo *forumRepository) CreateReply(_ context.Context, r forum.Reply, _ ...core.DBExecutor) (forum.Reply, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.posts.get(r.PostID); !ok {
		return forum.Reply{}, forum.ErrPostNotFound
	}
	r.ID = newID()
	repo.db.replies.put(r.ID, r)
	return r, nil
}

func (repo *forumRepository) ListClassMessages(_ context.Context, classID string, _ ...core.DBExecutor) ([]forum.ClassMessage, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	msgs := repo.db.classMessages.all(func(m forum.ClassMessage) bool { return m.ClassID == classID })
	for i := range msgs {
		msgs[i].Author = repo.db.summary(msgs[i].UserID)
	}
	return msgs, nil
}

func (repo *forumRepository) CreateClassMessage(_ context.Context, m forum.ClassMessage, _ ...core.DBExecutor) (forum.ClassMessage, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = newID()
	repo.db.classMessages.put(m.ID, m)
	return m, nil
}
