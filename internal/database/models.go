package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	IsOnline     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Conversation struct {
	Id           int
	ExternalId   string
	Name         string
	IsGroup      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Participants []User
	LastMessage  *Message
}

type Participant struct {
	Id             int
	ConversationId int
	AccountId      int
	CreatedAt      time.Time
}

type Message struct {
	Id             int
	ConversationId int
	UserId         int
	Content        string
	Kind           string
	Attachment     string
	CreatedAt      time.Time
}

type Todo struct {
	Id        int
	UserId    int
	Text      string
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type CreateConversationParams struct {
	ExternalId string
	Name       string
	IsGroup    bool
	MemberIds  []int
}

type CreateMessageParams struct {
	ConversationId int
	UserId         int
	Content        string
	Kind           string
	Attachment     string
}
