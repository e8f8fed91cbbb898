package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/message"
	"github.com/fitsenior/backend/core/profile"
)

type messageRepository struct {
	db *DB
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db}
}

// message must be called with db.mu held.
func (db *DB) message(m message.Message) message.Message {
	m.Sender = db.summary(m.SenderID)
	m.Recipient = db.summary(m.RecipientID)
	return m
}

func (repo *messageRepository) ListConversations(_ context.Context, userID string, _ ...core.DBExecutor) ([]message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	msgs := newestFirst(repo.db.messages.all(func(m message.Message) bool {
		return m.SenderID == userID || m.RecipientID == userID
	}), func(m message.Message) time.Time { return m.CreatedAt })

	seen := make(map[string]bool)
	latest := make([]message.Message, 0, len(msgs))
	for _, m := range msgs {
		other := m.Counterpart(userID)
		if seen[other] {
			continue
		}
		seen[other] = true
		latest = append(latest, repo.db.message(m))
	}
	return latest, nil
}

func (repo *messageRepository) ListThread(_ context.Context, userID, otherID string, _ ...core.DBExecutor) ([]message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	msgs := repo.db.messages.all(func(m message.Message) bool {
		return (m.SenderID == userID && m.RecipientID == otherID) || (m.SenderID == otherID && m.RecipientID == userID)
	})
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	for i := range msgs {
		msgs[i] = repo.db.message(msgs[i])
	}
	return msgs, nil
}

func (repo *messageRepository) GetMessage(_ context.Context, id string, _ ...core.DBExecutor) (message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.messages.get(id); ok {
		return repo.db.message(m), nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) CreateMessage(_ context.Context, m message.Message, _ ...core.DBExecutor) (message.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = newID()
	repo.db.messages.put(m.ID, m)
	return m, nil
}

func (repo *messageRepository) MarkRead(_ context.Context, id string, _ ...core.DBExecutor) (message.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m, ok := repo.db.messages.get(id)
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	m.Read = true
	repo.db.messages.put(m.ID, m)
	return repo.db.message(m), nil
}

// summaries must be called with db.mu held. Results are sorted by name.
func (db *DB) summaries(userIDs map[string]bool) []profile.Summary {
	out := make([]profile.Summary, 0, len(userIDs))
	for id := range userIDs {
		out = append(out, db.summary(id))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := strings.Compare(out[i].FullName, out[j].FullName); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (repo *messageRepository) ListProfessionalsOfStudent(_ context.Context, userID string, _ ...core.DBExecutor) ([]profile.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ids := make(map[string]bool)
	for _, e := range repo.db.enrollments.all(func(e enrollment.Enrollment) bool { return e.UserID == userID }) {
		c, ok := repo.db.classes.get(e.ClassID)
		if !ok {
			continue
		}
		if p, ok := repo.db.professionals.get(c.ProfessionalID); ok {
			ids[p.UserID] = true
		}
	}
	return repo.db.summaries(ids), nil
}

func (repo *messageRepository) ListStudentsOfProfessional(_ context.Context, professionalID string, _ ...core.DBExecutor) ([]profile.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classIDs := make(map[string]bool)
	for _, c := range repo.db.classes.all(func(c class.Class) bool { return c.ProfessionalID == professionalID }) {
		classIDs[c.ID] = true
	}
	ids := make(map[string]bool)
	for _, e := range repo.db.enrollments.all(func(e enrollment.Enrollment) bool { return classIDs[e.ClassID] }) {
		ids[e.UserID] = true
	}
	return repo.db.summaries(ids), nil
}
