package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/forum"
	"github.com/fitsenior/backend/core/profile"
)

// author columns of the "a" profile alias
const authorColumns = "COALESCE(a.full_name, '') AS author_name, COALESCE(a.avatar_url, '') AS author_avatar_url"

const postSelect = `SELECT fp.id, fp.user_id, fp.title, fp.content, fp.created_at, ` + authorColumns + `,
	(SELECT COUNT(*) FROM forum_replies r WHERE r.post_id = fp.id) AS reply_count
	FROM forum_posts fp LEFT JOIN profiles a ON a.id = fp.user_id`

type authorRow struct {
	AuthorName      string `db:"author_name"`
	AuthorAvatarURL string `db:"author_avatar_url"`
}

func (r authorRow) summary(userID string) profile.Summary {
	return profile.Summary{ID: userID, FullName: r.AuthorName, AvatarURL: r.AuthorAvatarURL}
}

type postRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	ReplyCount int       `db:"reply_count"`
	authorRow
}

func (r postRow) post() forum.Post {
	return forum.Post{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
		Author:     r.summary(r.UserID),
		ReplyCount: r.ReplyCount,
	}
}

type replyRow struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	authorRow
}

func (r replyRow) reply() forum.Reply {
	return forum.Reply{
		ID:        r.ID,
		PostID:    r.PostID,
		UserID:    r.UserID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Author:    r.summary(r.UserID),
	}
}

type classMessageRow struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"class_id"`
	UserID    string    `db:"user_id"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
	authorRow
}

func (r classMessageRow) classMessage() forum.ClassMessage {
	return forum.ClassMessage{
		ID:        r.ID,
		ClassID:   r.ClassID,
		UserID:    r.UserID,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
		Author:    r.summary(r.UserID),
	}
}

type forumRepository struct {
	repository
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *sqlx.DB) *forumRepository {
	return &forumRepository{repository{db: db}}
}

func (repo forumRepository) ListPosts(ctx context.Context, exec ...core.DBExecutor) ([]forum.Post, error) {
	var rows []postRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, postSelect+" ORDER BY fp.created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "selecting posts")
	}
	posts := make([]forum.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.post())
	}
	return posts, nil
}

func (repo forumRepository) GetPost(ctx context.Context, id string, exec ...core.DBExecutor) (forum.Post, error) {
	if !isUUID(id) {
		return forum.Post{}, forum.ErrPostNotFound
	}
	var row postRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, postSelect+" WHERE fp.id = $1", id); err != nil {
		return forum.Post{}, trapNoRowsErr(err, forum.ErrPostNotFound, "getting post")
	}
	return row.post(), nil
}

func (repo forumRepository) CreatePost(ctx context.Context, p forum.Post, exec ...core.DBExecutor) (forum.Post, error) {
	p.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO forum_posts (id, user_id, title, content, created_at) VALUES ($1, $2, $3, $4, $5)",
		p.ID, p.UserID, p.Title, p.Content, p.CreatedAt.UTC())
	if err != nil {
		return forum.Post{}, errors.Wrap(err, "inserting post")
	}
	return p, nil
}

func (repo forumRepository) DeletePost(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return forum.ErrPostNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM forum_posts WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return checkAffected(res, forum.ErrPostNotFound, "deleting post")
}

func (repo forumRepository) ListReplies(ctx context.Context, postID string, exec ...core.DBExecutor) ([]forum.Reply, error) {
	var rows []replyRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT r.id, r.post_id, r.user_id, r.content, r.created_at, `+authorColumns+`
		FROM forum_replies r LEFT JOIN profiles a ON a.id = r.user_id
		WHERE r.post_id = $1 ORDER BY r.created_at`, postID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting replies")
	}
	replies := make([]forum.Reply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, r.reply())
	}
	return replies, nil
}

func (repo forumRepository) CreateReply(ctx context.Context, r forum.Reply, exec ...core.DBExecutor) (forum.Reply, error) {
	r.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO forum_replies (id, post_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)",
		r.ID, r.PostID, r.UserID, r.Content, r.CreatedAt.UTC())
	if err != nil {
		return forum.Reply{}, errors.Wrap(err, "inserting reply")
	}
	return r, nil
}

func (repo forumRepository) ListClassMessages(ctx context.Context, classID string, exec ...core.DBExecutor) ([]forum.ClassMessage, error) {
	var rows []classMessageRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT m.id, m.class_id, m.user_id, m.message, m.created_at, `+authorColumns+`
		FROM forum_messages m LEFT JOIN profiles a ON a.id = m.user_id
		WHERE m.class_id = $1 ORDER BY m.created_at`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting class messages")
	}
	msgs := make([]forum.ClassMessage, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.classMessage())
	}
	return msgs, nil
}

func (repo forumRepository) CreateClassMessage(ctx context.Context, m forum.ClassMessage, exec ...core.DBExecutor) (forum.ClassMessage, error) {
	m.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO forum_messages (id, class_id, user_id, message, created_at) VALUES ($1, $2, $3, $4, $5)",
		m.ID, m.ClassID, m.UserID, m.Message, m.CreatedAt.UTC())
	if err != nil {
		return forum.ClassMessage{}, errors.Wrap(err, "inserting class message")
	}
	return m, nil
}
