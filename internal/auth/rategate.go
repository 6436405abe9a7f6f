package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ajayramola/todo-app/internal/secrets"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = time.Minute
)

var ErrRateLimited = errors.New("auth: too many attempts")

// RateGate counts login attempts per identity in a fixed window backed
// by the shared secret store, so the limit holds across service
// instances. Identities combine username and source address: limiting
// on the username alone would let anyone exhaust a victim's budget
// remotely.
type RateGate struct {
	store  secrets.Store
	log    *log.Logger
	limit  int64
	window time.Duration
}

func NewRateGate(store secrets.Store, logger *log.Logger) *RateGate {
	return &RateGate{
		store:  store,
		log:    logger,
		limit:  defaultRateLimit,
		window: defaultRateWindow,
	}
}

// Identity builds the gate key for a login attempt.
func Identity(username, sourceAddr string) string {
	return username + ":" + sourceAddr
}

// Allow consumes one attempt for identity. It returns ErrRateLimited
// once the window's budget is spent.
func (g *RateGate) Allow(ctx context.Context, identity string) error {
	n, err := g.store.Incr(ctx, rateKey(identity), g.window)
	if err != nil {
		// fail open: an unreachable counter store should not lock
		// everyone out of login
		g.log.Printf("rate gate: incr %q: %v", identity, err)
		return nil
	}

	if n > g.limit {
		return ErrRateLimited
	}

	return nil
}

func rateKey(identity string) string {
	return fmt.Sprintf("login_limit:%s", identity)
}
