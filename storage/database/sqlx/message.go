package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/message"
	"github.com/fitsenior/backend/core/profile"
)

const messageSelect = `SELECT m.id, m.sender_id, m.recipient_id, m.content, m.read, m.created_at,
	COALESCE(s.full_name, '') AS sender_name, COALESCE(s.avatar_url, '') AS sender_avatar_url,
	COALESCE(r.full_name, '') AS recipient_name, COALESCE(r.avatar_url, '') AS recipient_avatar_url
	FROM messages m
		LEFT JOIN profiles s ON s.id = m.sender_id
		LEFT JOIN profiles r ON r.id = m.recipient_id`

type messageRow struct {
	ID                 string    `db:"id"`
	SenderID           string    `db:"sender_id"`
	RecipientID        string    `db:"recipient_id"`
	Content            string    `db:"content"`
	Read               bool      `db:"read"`
	CreatedAt          time.Time `db:"created_at"`
	SenderName         string    `db:"sender_name"`
	SenderAvatarURL    string    `db:"sender_avatar_url"`
	RecipientName      string    `db:"recipient_name"`
	RecipientAvatarURL string    `db:"recipient_avatar_url"`
}

func (r messageRow) message() message.Message {
	return message.Message{
		ID:          r.ID,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Content:     r.Content,
		Read:        r.Read,
		CreatedAt:   r.CreatedAt,
		Sender:      profile.Summary{ID: r.SenderID, FullName: r.SenderName, AvatarURL: r.SenderAvatarURL},
		Recipient:   profile.Summary{ID: r.RecipientID, FullName: r.RecipientName, AvatarURL: r.RecipientAvatarURL},
	}
}

func messages(rows []messageRow) []message.Message {
	msgs := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.message())
	}
	return msgs
}

type summaryRow struct {
	ID        string `db:"id"`
	FullName  string `db:"full_name"`
	AvatarURL string `db:"avatar_url"`
}

func summaries(rows []summaryRow) []profile.Summary {
	s := make([]profile.Summary, 0, len(rows))
	for _, r := range rows {
		s = append(s, profile.Summary(r))
	}
	return s
}

type messageRepository struct {
	repository
}

var _ message.Repository = (*messageRepository)(nil)

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{repository{db: db}}
}

func (repo messageRepository) ListConversations(ctx context.Context, userID string, exec ...core.DBExecutor) ([]message.Message, error) {
	if !isUUID(userID) {
		return []message.Message{}, nil
	}
	var rows []messageRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT * FROM (
			SELECT DISTINCT ON (CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END) c.*
			FROM messages m JOIN (`+messageSelect+`) c ON c.id = m.id
			WHERE m.sender_id = $1 OR m.recipient_id = $1
			ORDER BY CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END, m.created_at DESC
		) latest ORDER BY latest.created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting conversations")
	}
	return messages(rows), nil
}

func (repo messageRepository) ListThread(ctx context.Context, userID, otherID string, exec ...core.DBExecutor) ([]message.Message, error) {
	if !isUUID(userID) || !isUUID(otherID) {
		return []message.Message{}, nil
	}
	var rows []messageRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, messageSelect+`
		WHERE (m.sender_id = $1 AND m.recipient_id = $2) OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at`, userID, otherID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting thread")
	}
	return messages(rows), nil
}

func (repo messageRepository) GetMessage(ctx context.Context, id string, exec ...core.DBExecutor) (message.Message, error) {
	if !isUUID(id) {
		return message.Message{}, message.ErrNotFound
	}
	var row messageRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, messageSelect+" WHERE m.id = $1", id); err != nil {
		return message.Message{}, trapNoRowsErr(err, message.ErrNotFound, "getting message")
	}
	return row.message(), nil
}

func (repo messageRepository) CreateMessage(ctx context.Context, m message.Message, exec ...core.DBExecutor) (message.Message, error) {
	m.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO messages (id, sender_id, recipient_id, content, read, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		m.ID, m.SenderID, m.RecipientID, m.Content, m.Read, m.CreatedAt.UTC())
	if err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo messageRepository) MarkRead(ctx context.Context, id string, exec ...core.DBExecutor) (message.Message, error) {
	if !isUUID(id) {
		return message.Message{}, message.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "UPDATE messages SET read = TRUE WHERE id = $1", id)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "marking message read")
	}
	if err = checkAffected(res, message.ErrNotFound, "marking message read"); err != nil {
		return message.Message{}, err
	}
	return repo.GetMessage(ctx, id, exec...)
}

func (repo messageRepository) ListProfessionalsOfStudent(ctx context.Context, userID string, exec ...core.DBExecutor) ([]profile.Summary, error) {
	var rows []summaryRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT DISTINCT p.user_id AS id, p.full_name, COALESCE(p.avatar_url, '') AS avatar_url
		FROM enrollments e
			JOIN classes c ON c.id = e.class_id
			JOIN professionals p ON p.id = c.professional_id
		WHERE e.user_id = $1 AND e.status <> 'cancelled'
		ORDER BY p.full_name`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting professional contacts")
	}
	return summaries(rows), nil
}

func (repo messageRepository) ListStudentsOfProfessional(ctx context.Context, professionalID string, exec ...core.DBExecutor) ([]profile.Summary, error) {
	var rows []summaryRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT DISTINCT e.user_id AS id, COALESCE(s.full_name, pr.full_name, '') AS full_name,
			COALESCE(NULLIF(s.avatar_url, ''), pr.avatar_url, '') AS avatar_url
		FROM enrollments e
			JOIN classes c ON c.id = e.class_id
			LEFT JOIN students s ON s.id = e.student_id
			LEFT JOIN profiles pr ON pr.id = e.user_id
		WHERE c.professional_id = $1 AND e.status <> 'cancelled'
		ORDER BY full_name`, professionalID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting student contacts")
	}
	return summaries(rows), nil
}
