package server

import (
	"context"
	"log"

	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/stats"
	"github.com/ajayramola/todo-app/internal/types"
)

// ChatServer owns the broker and the registry of live websocket
// clients. It also maintains each account's online flag: an account is
// online while it has at least one open connection.
type ChatServer struct {
	log            *log.Logger
	db             database.TodoAppRepository
	stats          stats.StatsProvider
	broker         *Broker
	clients        map[*Client]struct{}
	userConns      map[int]int
	registerChan   chan *Client
	deRegisterChan chan *Client
	stop           chan struct{}
	done           chan struct{}
}

func NewChatServer(logger *log.Logger, db database.TodoAppRepository, su stats.StatsProvider) (*ChatServer, error) {
	su.RegisterMetric(stats.ActiveConnections)
	su.RegisterMetric(stats.ActiveSubscriptions)
	su.RegisterMetric(stats.MessagesPublished)
	su.RegisterMetric(stats.MessagesDropped)

	return &ChatServer{
		log:            logger,
		db:             db,
		stats:          su,
		broker:         NewBroker(logger, su),
		clients:        make(map[*Client]struct{}),
		userConns:      make(map[int]int),
		registerChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.registerChan:
			cs.log.Printf("adding connection from %q", client.user.Username)
			cs.addClient(client)
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection from %q", client.user.Username)
			cs.removeClient(client)
		case <-cs.stop:
			cs.log.Println("shutting down client connections")
			for c := range cs.clients {
				c.stopClient()
			}

			close(cs.done)
			return
		}
	}
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clients[c] = struct{}{}
	cs.userConns[c.user.Id]++
	if cs.userConns[c.user.Id] == 1 {
		if err := cs.db.SetAccountOnline(c.user.Id, true); err != nil {
			cs.log.Printf("set account %d online: %v", c.user.Id, err)
		}
	}

	cs.stats.Incr(stats.ActiveConnections)
}

func (cs *ChatServer) removeClient(c *Client) {
	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	cs.userConns[c.user.Id]--
	if cs.userConns[c.user.Id] <= 0 {
		delete(cs.userConns, c.user.Id)
		if err := cs.db.SetAccountOnline(c.user.Id, false); err != nil {
			cs.log.Printf("set account %d offline: %v", c.user.Id, err)
		}
	}

	cs.stats.Decr(stats.ActiveConnections)
}

func (cs *ChatServer) RegisterClient(c *Client) {
	select {
	case cs.registerChan <- c:
	case <-cs.done:
	}
}

func (cs *ChatServer) DeregisterClient(c *Client) {
	select {
	case cs.deRegisterChan <- c:
	case <-cs.done:
	}
}

// PublishMessage fans a persisted message out to the conversation's
// live subscribers. Delivery is at most once and only to subscribers
// attached right now; history is served from the database.
func (cs *ChatServer) PublishMessage(conversationId string, msg *types.Message) {
	cs.broker.Publish(conversationId, msg)
}

func (cs *ChatServer) Broker() *Broker {
	return cs.broker
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("received shutdown signal")
	close(cs.stop)

	select {
	case <-cs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
