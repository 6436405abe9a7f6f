package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	IsOnline     bool      `json:"is_online"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Conversation struct {
	Id           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	IsGroup      bool      `json:"is_group"`
	Participants []User    `json:"participants,omitempty"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Message kinds understood by the clients.
const (
	KindText  = "text"
	KindCode  = "code"
	KindImage = "image"
)

type Message struct {
	Id             int       `json:"id"`
	ConversationId string    `json:"conversation_id"`
	UserId         int       `json:"user_id"`
	Content        string    `json:"content"`
	Kind           string    `json:"kind"`
	Attachment     string    `json:"attachment,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Todo struct {
	Id        int       `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
