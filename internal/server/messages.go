package server

import (
	"net/http"
	"time"

	"github.com/ajayramola/todo-app/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is a frame received over the websocket. Exactly one of
// Sub and Unsub is set.
type ClientMessage struct {
	BaseMessage
	Sub    *Sub    `json:"sub,omitempty"`
	Unsub  *Unsub  `json:"unsub,omitempty"`
	UserId int     `json:"-"`
	client *Client `json:"-"`
}

type Sub struct {
	ConversationId string `json:"conversation_id"`
}

type Unsub struct {
	ConversationId string `json:"conversation_id"`
}

// ServerMessage is a frame pushed to the websocket: either a response
// to a client frame or a published conversation message.
type ServerMessage struct {
	BaseMessage
	Response *Response      `json:"response,omitempty"`
	Message  *types.Message `json:"message,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

func NoErrOK(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
		},
	}
}

func ErrConversationNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "conversation not found",
		},
	}
}

func ErrNotParticipant(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "not a participant of this conversation",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
