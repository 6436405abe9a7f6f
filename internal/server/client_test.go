package server

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/stats"
	"github.com/ajayramola/todo-app/internal/testutil"
	"github.com/ajayramola/todo-app/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestClient(t *testing.T, db database.TodoAppRepository) *Client {
	su := &stats.MockStatsUpdater{}
	su.On("Incr", mock.Anything).Return().Maybe()
	su.On("Decr", mock.Anything).Return().Maybe()

	cs := newTestChatServer(t, db, su)
	return NewClient(types.User{Id: 1, Username: "alice"}, nil, cs, testutil.TestLogger(t))
}

func recvResponse(t *testing.T, c *Client) *ServerMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected a queued server message")
		return nil
	}
}

func TestClientSubscribe(t *testing.T) {
	db := &database.MockTodoAppRepository{}
	defer db.AssertExpectations(t)

	db.On("GetConversationByExternalId", "conv-1").Return(database.Conversation{Id: 7, ExternalId: "conv-1"}, nil).Once()
	db.On("IsParticipant", 1, 7).Return(true).Once()

	c := newTestClient(t, db)
	c.subscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Sub:         &Sub{ConversationId: "conv-1"},
	})

	resp := recvResponse(t, c)
	assert.Equal(t, http.StatusOK, resp.Response.ResponseCode)
	assert.Equal(t, 1, c.chatServer.Broker().NumSubscribers("conv-1"), "expected a live broker subscription")

	// published messages are forwarded over the client's send channel
	msg := &types.Message{Id: 9, ConversationId: "conv-1", Content: "hi"}
	c.chatServer.PublishMessage("conv-1", msg)

	forwarded := recvResponse(t, c)
	assert.Equal(t, msg, forwarded.Message, "expected published message to be forwarded")

	c.detachAll()
	assert.Equal(t, 0, c.chatServer.Broker().NumSubscribers("conv-1"))
}

func TestClientSubscribe_Idempotent(t *testing.T) {
	db := &database.MockTodoAppRepository{}
	defer db.AssertExpectations(t)

	db.On("GetConversationByExternalId", "conv-1").Return(database.Conversation{Id: 7, ExternalId: "conv-1"}, nil).Once()
	db.On("IsParticipant", 1, 7).Return(true).Once()

	c := newTestClient(t, db)
	msg := &ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Sub:         &Sub{ConversationId: "conv-1"},
	}

	c.subscribe(msg)
	recvResponse(t, c)

	// second subscribe doesn't touch the database or the broker
	c.subscribe(msg)
	resp := recvResponse(t, c)
	assert.Equal(t, http.StatusOK, resp.Response.ResponseCode)
	assert.Equal(t, 1, c.chatServer.Broker().NumSubscribers("conv-1"))

	c.detachAll()
}

func TestClientSubscribe_ConversationNotFound(t *testing.T) {
	db := &database.MockTodoAppRepository{}
	defer db.AssertExpectations(t)

	db.On("GetConversationByExternalId", "missing").Return(database.Conversation{}, sql.ErrNoRows).Once()

	c := newTestClient(t, db)
	c.subscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Sub:         &Sub{ConversationId: "missing"},
	})

	resp := recvResponse(t, c)
	assert.Equal(t, http.StatusNotFound, resp.Response.ResponseCode)
	assert.Equal(t, "conversation not found", resp.Response.Error)
}

func TestClientSubscribe_NotParticipant(t *testing.T) {
	db := &database.MockTodoAppRepository{}
	defer db.AssertExpectations(t)

	db.On("GetConversationByExternalId", "conv-1").Return(database.Conversation{Id: 7, ExternalId: "conv-1"}, nil).Once()
	db.On("IsParticipant", 1, 7).Return(false).Once()

	c := newTestClient(t, db)
	c.subscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Sub:         &Sub{ConversationId: "conv-1"},
	})

	resp := recvResponse(t, c)
	assert.Equal(t, http.StatusForbidden, resp.Response.ResponseCode)
	assert.Equal(t, 0, c.chatServer.Broker().NumSubscribers("conv-1"))
}

func TestClientUnsubscribe(t *testing.T) {
	db := &database.MockTodoAppRepository{}
	defer db.AssertExpectations(t)

	db.On("GetConversationByExternalId", "conv-1").Return(database.Conversation{Id: 7, ExternalId: "conv-1"}, nil).Once()
	db.On("IsParticipant", 1, 7).Return(true).Once()

	c := newTestClient(t, db)
	c.subscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 1},
		Sub:         &Sub{ConversationId: "conv-1"},
	})
	recvResponse(t, c)

	c.unsubscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 2},
		Unsub:       &Unsub{ConversationId: "conv-1"},
	})
	resp := recvResponse(t, c)
	assert.Equal(t, http.StatusOK, resp.Response.ResponseCode)
	assert.Equal(t, 0, c.chatServer.Broker().NumSubscribers("conv-1"))

	// unsubscribing again still succeeds
	c.unsubscribe(&ClientMessage{
		BaseMessage: BaseMessage{Id: 3},
		Unsub:       &Unsub{ConversationId: "conv-1"},
	})
	resp = recvResponse(t, c)
	assert.Equal(t, http.StatusOK, resp.Response.ResponseCode)
}

func TestClientStopIdempotent(t *testing.T) {
	c := newTestClient(t, &database.MockTodoAppRepository{})
	c.stopClient()
	c.stopClient()
}
