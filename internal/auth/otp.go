package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ajayramola/todo-app/internal/mailer"
	"github.com/ajayramola/todo-app/internal/secrets"
)

// OtpTTL is the lifetime of a one-time login code.
const OtpTTL = 10 * time.Minute

// ErrCodeInvalid covers both a wrong code and an expired one. The two
// cases are deliberately indistinguishable to the caller.
var ErrCodeInvalid = errors.New("auth: invalid or expired code")

// SecondFactor issues and verifies one-time login codes. A code lives
// in the secret store under the account's key for OtpTTL; issuing a new
// one overwrites any previous code, so at most one is ever live per
// account.
type SecondFactor struct {
	store  secrets.Store
	mailer mailer.Mailer
	log    *log.Logger
}

func NewSecondFactor(store secrets.Store, m mailer.Mailer, logger *log.Logger) *SecondFactor {
	return &SecondFactor{
		store:  store,
		mailer: m,
		log:    logger,
	}
}

// Issue generates a six-digit code, stores it under the account's key
// and hands it to the mailer. The code is never returned to the caller.
// A failed send is logged but not surfaced: the code is stored and the
// client may retry the whole login step.
func (sf *SecondFactor) Issue(ctx context.Context, accountId int, email string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if err := sf.store.Set(ctx, otpKey(accountId), code, OtpTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := sf.mailer.SendLoginCode(ctx, email, code); err != nil {
		sf.log.Printf("send login code to account %d: %v", accountId, err)
	}

	return nil
}

// Verify consumes the account's live code if it matches. The compare
// and delete are a single atomic store operation, so a code is accepted
// at most once even under concurrent verification.
func (sf *SecondFactor) Verify(ctx context.Context, accountId int, code string) error {
	ok, err := sf.store.ConsumeIfEqual(ctx, otpKey(accountId), code)
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if !ok {
		return ErrCodeInvalid
	}

	return nil
}

// generateCode draws a uniform six-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpKey(accountId int) string {
	return fmt.Sprintf("otp:%d", accountId)
}
