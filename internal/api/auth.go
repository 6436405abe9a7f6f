package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ajayramola/todo-app/internal/auth"
	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/stats"
	"github.com/ajayramola/todo-app/internal/types"
)

type contextKey string

const userIdKey contextKey = "user-id"

func WithUserId(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func UserId(ctx context.Context) (int, bool) {
	userId, ok := ctx.Value(userIdKey).(int)

	return userId, ok
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VerifyOtpRequest struct {
	Username string `json:"username"`
	Otp      string `json:"otp"`
}

// SessionResponse is returned whenever a session token is minted.
type SessionResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (s *TodoApp) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fields := make(map[string]string)
	if len(req.Username) < 3 {
		fields["username"] = "must be at least 3 characters"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if req.Email == "" {
		fields["email"] = "must not be empty"
	}
	if len(fields) > 0 {
		errResp := NewValidationError(fields)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := auth.HashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateAccountParams{
		Username:     req.Username,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
	}

	newUser, err := s.db.CreateAccount(params)
	if err != nil {
		var errResp *ApiError
		if database.IsUniqueViolation(err) {
			errResp = NewConflictError("username or email already taken")
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.tokens.IssueToken(newUser.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, SessionResponse{
		Token: token,
		User: types.User{
			Id:           newUser.Id,
			Username:     newUser.Username,
			EmailAddress: newUser.EmailAddress,
			CreatedAt:    newUser.CreatedAt,
			UpdatedAt:    newUser.UpdatedAt,
		},
	})
}

// login is the first step of the two-factor flow: a passed rate gate
// and a correct password result in a one-time code being issued out of
// band. No session token is minted here.
func (s *TodoApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Username == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.LoginAttempts)

	identity := auth.Identity(lr.Username, clientIP(r))
	if err := s.rateGate.Allow(r.Context(), identity); err != nil {
		s.stats.Incr(stats.RateLimitRejections)
		errResp := NewTooManyRequestsError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByUsername(lr.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !auth.VerifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.secondFactor.Issue(r.Context(), dbUser.Id, dbUser.EmailAddress); err != nil {
		s.log.Printf("issue login code: %v", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.OtpCodesIssued)
	s.writeJson(w, http.StatusOK, map[string]string{"status": "OTP_SENT"})
}

// verifyOtp is the second step: consuming the live code mints a session
// token. A wrong code and an expired one produce the same response.
func (s *TodoApp) verifyOtp(w http.ResponseWriter, r *http.Request) {
	var req VerifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || len(req.Otp) != 6 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByUsername(req.Username)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			// same response as a bad code so the endpoint doesn't
			// reveal which usernames exist
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.secondFactor.Verify(r.Context(), dbUser.Id, req.Otp); err != nil {
		var errResp *ApiError
		if errors.Is(err, auth.ErrCodeInvalid) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.tokens.IssueToken(dbUser.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.OtpCodesVerified)
	s.writeJson(w, http.StatusOK, SessionResponse{
		Token: token,
		User: types.User{
			Id:           dbUser.Id,
			Username:     dbUser.Username,
			EmailAddress: dbUser.EmailAddress,
			CreatedAt:    dbUser.CreatedAt,
			UpdatedAt:    dbUser.UpdatedAt,
		},
	})
}

func (s *TodoApp) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	u := types.User{
		Id:           user.Id,
		Username:     user.Username,
		EmailAddress: user.EmailAddress,
		IsOnline:     user.IsOnline,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	s.writeJson(w, http.StatusOK, u)
}

// clientIP extracts the source address used in the rate-limit key,
// preferring proxy headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
