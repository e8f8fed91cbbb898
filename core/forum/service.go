package forum

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/profile"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("permission denied")
)

type (
	Repository interface {
		ListPosts(ctx context.Context, exec ...core.DBExecutor) ([]Post, error)
		GetPost(ctx context.Context, id string, exec ...core.DBExecutor) (Post, error)
		CreatePost(ctx context.Context, p Post, exec ...core.DBExecutor) (Post, error)
		DeletePost(ctx context.Context, id string, exec ...core.DBExecutor) error
		ListReplies(ctx context.Context, postID string, exec ...core.DBExecutor) ([]Reply, error)
		CreateReply(ctx context.Context, r Reply, exec ...core.DBExecutor) (Reply, error)
		ListClassMessages(ctx context.Context, classID string, exec ...core.DBExecutor) ([]ClassMessage, error)
		CreateClassMessage(ctx context.Context, m ClassMessage, exec ...core.DBExecutor) (ClassMessage, error)
	}

	Service interface {
		ListPosts(ctx context.Context) ([]Post, error)
		GetThread(ctx context.Context, id string) (Thread, error)
		CreatePost(ctx context.Context, userID string, np NewPost) (Post, error)
		Reply(ctx context.Context, userID, postID string, nr NewReply) (Reply, error)
		// DeletePost deletes a post of userID; admins may delete any post. Other posts are reported as not found.
		DeletePost(ctx context.Context, userID string, isAdmin bool, id string) error
		ListClassMessages(ctx context.Context, userID, classID string) ([]ClassMessage, error)
		PostClassMessage(ctx context.Context, userID, classID string, nm NewClassMessage) (ClassMessage, error)
	}

	service struct {
		repo          Repository
		profileRepo   profile.Repository
		enrollmentSvc enrollment.Service
		publisher     core.EventPublisher
		logger        core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	profileRepo profile.Repository,
	enrollmentSvc enrollment.Service,
	publisher core.EventPublisher,
	logger core.Logger,
) Service {
	if publisher == nil {
		publisher = core.NoopPublisher
	}
	return &service{
		repo:          repo,
		profileRepo:   profileRepo,
		enrollmentSvc: enrollmentSvc,
		publisher:     publisher,
		logger:        logger,
	}
}

func (svc *service) author(ctx context.Context, userID string) profile.Summary {
	p, err := svc.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return profile.Summary{ID: userID}
	}
	return p.Summary()
}

func (svc *service) ListPosts(ctx context.Context) ([]Post, error) {
	return svc.repo.ListPosts(ctx)
}

func (svc *service) GetThread(ctx context.Context, id string) (Thread, error) {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	replies, err := svc.repo.ListReplies(ctx, id)
	if err != nil {
		return Thread{}, err
	}
	if replies == nil {
		replies = []Reply{}
	}
	return Thread{Post: p, Replies: replies}, nil
}

func (svc *service) CreatePost(ctx context.Context, userID string, np NewPost) (Post, error) {
	p, err := svc.repo.CreatePost(ctx, Post{
		UserID:    userID,
		Title:     np.Title,
		Content:   np.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Post{}, err
	}
	p.Author = svc.author(ctx, userID)
	return p, nil
}

func (svc *service) Reply(ctx context.Context, userID, postID string, nr NewReply) (Reply, error) {
	if _, err := svc.repo.GetPost(ctx, postID); err != nil {
		return Reply{}, err
	}
	r, err := svc.repo.CreateReply(ctx, Reply{
		PostID:    postID,
		UserID:    userID,
		Content:   nr.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Reply{}, err
	}
	r.Author = svc.author(ctx, userID)
	return r, nil
}

func (svc *service) DeletePost(ctx context.Context, userID string, isAdmin bool, id string) error {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID && !isAdmin {
		return ErrPostNotFound
	}
	return svc.repo.DeletePost(ctx, id)
}

func (svc *service) ListClassMessages(ctx context.Context, userID, classID string) ([]ClassMessage, error) {
	if _, _, err := svc.enrollmentSvc.ClassAccess(ctx, userID, classID); err != nil {
		return nil, accessErr(err)
	}
	return svc.repo.ListClassMessages(ctx, classID)
}

func (svc *service) PostClassMessage(ctx context.Context, userID, classID string, nm NewClassMessage) (ClassMessage, error) {
	if _, _, err := svc.enrollmentSvc.ClassAccess(ctx, userID, classID); err != nil {
		return ClassMessage{}, accessErr(err)
	}
	m, err := svc.repo.CreateClassMessage(ctx, ClassMessage{
		ClassID:   classID,
		UserID:    userID,
		Message:   nm.Message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return ClassMessage{}, err
	}
	m.Author = svc.author(ctx, userID)

	recipients, err := svc.enrollmentSvc.MemberIDs(ctx, classID)
	if err == nil {
		err = svc.publisher.Publish(ctx, core.Event{Type: core.EventForumMessage, Recipients: recipients, Payload: m})
	}
	if err != nil && svc.logger != nil {
		svc.logger.Warn("forum: could not publish class message", err)
	}
	return m, nil
}

func accessErr(err error) error {
	if err == enrollment.ErrForbidden {
		return ErrForbidden
	}
	return err
}
