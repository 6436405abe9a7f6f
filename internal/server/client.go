package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ajayramola/todo-app/internal/types"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client is one websocket connection for an authenticated account. A
// client multiplexes any number of conversation subscriptions over the
// single connection and detaches all of them when it disconnects.
type Client struct {
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *log.Logger
	user       types.User
	send       chan *ServerMessage
	subsLock   sync.Mutex
	subs       map[string]*Subscription
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		user:       user,
		send:       make(chan *ServerMessage, 256),
		subs:       make(map[string]*Subscription),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		msg.UserId = c.user.Id
		msg.Timestamp = Now()

		switch {
		case msg.Sub != nil:
			c.subscribe(&msg)
		case msg.Unsub != nil:
			c.unsubscribe(&msg)
		default:
			c.queueMessage(ErrInvalidMessage(msg.Id))
		}
	}
}

// subscribe attaches the client to a conversation topic after checking
// the account is a participant. Subscribing twice to the same
// conversation is a no-op.
func (c *Client) subscribe(msg *ClientMessage) {
	externalId := msg.Sub.ConversationId

	c.subsLock.Lock()
	_, exists := c.subs[externalId]
	c.subsLock.Unlock()
	if exists {
		c.queueMessage(NoErrOK(msg.Id))
		return
	}

	conv, err := c.chatServer.db.GetConversationByExternalId(externalId)
	if err != nil {
		c.queueMessage(ErrConversationNotFound(msg.Id))
		return
	}

	if !c.chatServer.db.IsParticipant(c.user.Id, conv.Id) {
		c.queueMessage(ErrNotParticipant(msg.Id))
		return
	}

	sub := c.chatServer.broker.Subscribe(externalId)

	c.subsLock.Lock()
	c.subs[externalId] = sub
	c.subsLock.Unlock()

	go c.forward(sub)

	c.log.Printf("client %q subscribed to %q", c.user.Username, externalId)
	c.queueMessage(NoErrOK(msg.Id))
}

// unsubscribe detaches the client from a conversation topic. It never
// fails: detaching an unknown or already-detached subscription is fine.
func (c *Client) unsubscribe(msg *ClientMessage) {
	externalId := msg.Unsub.ConversationId

	c.subsLock.Lock()
	sub, ok := c.subs[externalId]
	if ok {
		delete(c.subs, externalId)
	}
	c.subsLock.Unlock()

	if ok {
		sub.Cancel()
		c.log.Printf("client %q unsubscribed from %q", c.user.Username, externalId)
	}

	c.queueMessage(NoErrOK(msg.Id))
}

// forward pumps published messages from one subscription into the
// shared send channel. It exits when the subscription is canceled.
func (c *Client) forward(sub *Subscription) {
	for msg := range sub.C() {
		c.queueMessage(&ServerMessage{
			BaseMessage: BaseMessage{
				Timestamp: msg.Timestamp,
			},
			Message: msg,
		})
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Println("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.detachAll()
	c.chatServer.DeregisterClient(c)
	c.stopClient()
}

// detachAll cancels every live subscription so a disconnected client
// leaves nothing registered on the broker.
func (c *Client) detachAll() {
	c.subsLock.Lock()
	subs := make([]*Subscription, 0, len(c.subs))
	for id, sub := range c.subs {
		subs = append(subs, sub)
		delete(c.subs, id)
	}
	c.subsLock.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
