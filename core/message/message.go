package message

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/session"
)

var (
	ErrNotFound          = errors.New("message not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrMissingFields     = errors.New("recipient_id and content are required")
	ErrSelfMessage       = errors.New("cannot send a message to yourself")
)

type Message struct {
	ID          string          `json:"id"`
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id"`
	Content     string          `json:"content"`
	Read        bool            `json:"read"`
	CreatedAt   time.Time       `json:"created_at"`
	Sender      profile.Summary `json:"sender"`
	Recipient   profile.Summary `json:"recipient"`
}

// Counterpart is the other side of the conversation from userID's point of view.
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Contact is someone the caller can start a conversation with.
type Contact struct {
	profile.Summary
	Role session.Role `json:"role"`
}

type NewMessage struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

func (nm *NewMessage) Validate() error {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Content = core.CleanString(nm.Content)
	if nm.RecipientID == "" || nm.Content == "" {
		return ErrMissingFields
	}
	return nil
}

type (
	Repository interface {
		// ListConversations returns the latest message exchanged with each counterpart of userID, newest first.
		ListConversations(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Message, error)
		// ListThread returns the messages between two users, oldest first.
		ListThread(ctx context.Context, userID, otherID string, exec ...core.DBExecutor) ([]Message, error)
		GetMessage(ctx context.Context, id string, exec ...core.DBExecutor) (Message, error)
		CreateMessage(ctx context.Context, m Message, exec ...core.DBExecutor) (Message, error)
		MarkRead(ctx context.Context, id string, exec ...core.DBExecutor) (Message, error)
		// ListProfessionalsOfStudent returns the professionals teaching the classes userID is enrolled in.
		ListProfessionalsOfStudent(ctx context.Context, userID string, exec ...core.DBExecutor) ([]profile.Summary, error)
		// ListStudentsOfProfessional returns the users enrolled in the classes of a professional.
		ListStudentsOfProfessional(ctx context.Context, professionalID string, exec ...core.DBExecutor) ([]profile.Summary, error)
	}

	Service interface {
		Conversations(ctx context.Context, userID string) ([]Message, error)
		Contacts(ctx context.Context, sess session.Session) ([]Contact, error)
		Thread(ctx context.Context, userID, otherID string) ([]Message, error)
		Send(ctx context.Context, userID string, nm NewMessage) (Message, error)
		MarkRead(ctx context.Context, userID, id string) (Message, error)
	}

	service struct {
		repo        Repository
		profileRepo profile.Repository
		publisher   core.EventPublisher
		logger      core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, profileRepo profile.Repository, publisher core.EventPublisher, logger core.Logger) Service {
	if publisher == nil {
		publisher = core.NoopPublisher
	}
	return &service{repo: repo, profileRepo: profileRepo, publisher: publisher, logger: logger}
}

func (svc *service) Conversations(ctx context.Context, userID string) ([]Message, error) {
	return svc.repo.ListConversations(ctx, userID)
}

func (svc *service) Contacts(ctx context.Context, sess session.Session) ([]Contact, error) {
	var (
		summaries []profile.Summary
		role      session.Role
		err       error
	)
	switch {
	case sess.IsStudent():
		role = session.RoleProfessional
		summaries, err = svc.repo.ListProfessionalsOfStudent(ctx, sess.UserID())
	case sess.IsProfessional():
		role = session.RoleStudent
		summaries, err = svc.repo.ListStudentsOfProfessional(ctx, sess.Professional.ID)
	}
	if err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(summaries))
	for _, s := range summaries {
		contacts = append(contacts, Contact{Summary: s, Role: role})
	}
	return contacts, nil
}

func (svc *service) Thread(ctx context.Context, userID, otherID string) ([]Message, error) {
	return svc.repo.ListThread(ctx, userID, otherID)
}

func (svc *service) Send(ctx context.Context, userID string, nm NewMessage) (Message, error) {
	if err := nm.Validate(); err != nil {
		return Message{}, err
	}
	if nm.RecipientID == userID {
		return Message{}, ErrSelfMessage
	}
	recipient, err := svc.profileRepo.GetProfile(ctx, nm.RecipientID)
	if err != nil {
		if err == profile.ErrNotFound {
			return Message{}, ErrRecipientNotFound
		}
		return Message{}, err
	}

	m, err := svc.repo.CreateMessage(ctx, Message{
		SenderID:    userID,
		RecipientID: recipient.ID,
		Content:     nm.Content,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}
	m.Recipient = recipient.Summary()
	if sender, err := svc.profileRepo.GetProfile(ctx, userID); err == nil {
		m.Sender = sender.Summary()
	}

	svc.publish(ctx, core.Event{Type: core.EventMessageNew, Recipients: []string{recipient.ID}, Payload: m})
	return m, nil
}

func (svc *service) MarkRead(ctx context.Context, userID, id string) (Message, error) {
	m, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if m.RecipientID != userID {
		return Message{}, ErrNotFound
	}
	if m, err = svc.repo.MarkRead(ctx, id); err != nil {
		return Message{}, err
	}

	svc.publish(ctx, core.Event{Type: core.EventMessageRead, Recipients: []string{m.SenderID}, Payload: m})
	return m, nil
}

func (svc *service) publish(ctx context.Context, evt core.Event) {
	if err := svc.publisher.Publish(ctx, evt); err != nil && svc.logger != nil {
		svc.logger.Warn("message: could not publish "+evt.Type, err)
	}
}
