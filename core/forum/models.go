package forum

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/profile"
)

type Post struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
	Author     profile.Summary `json:"author"`
	ReplyCount int             `json:"reply_count"`
}

type Reply struct {
	ID        string          `json:"id"`
	PostID    string          `json:"post_id"`
	UserID    string          `json:"user_id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Author    profile.Summary `json:"author"`
}

type Thread struct {
	Post
	Replies []Reply `json:"replies"`
}

// ClassMessage is a message of the forum of a class.
type ClassMessage struct {
	ID        string          `json:"id"`
	ClassID   string          `json:"class_id"`
	UserID    string          `json:"user_id"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
	Author    profile.Summary `json:"author"`
}

type NewPost struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

type NewReply struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

func (nr *NewReply) Validate(validate *validator.Validate) error {
	nr.Content = core.CleanString(nr.Content)
	return validate.Struct(nr)
}

type NewClassMessage struct {
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

func (nm *NewClassMessage) Validate(validate *validator.Validate) error {
	nm.Message = core.CleanString(nm.Message)
	return validate.Struct(nm)
}
