package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/types"
)

type CreateTodoRequest struct {
	Text string `json:"text"`
}

type UpdateTodoRequest struct {
	Text string `json:"text,omitempty"`
	Done *bool  `json:"done,omitempty"`
}

func (s *TodoApp) listTodos(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbTodos, err := s.db.ListTodos(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	todos := make([]types.Todo, 0, len(dbTodos))
	for _, t := range dbTodos {
		todos = append(todos, todoResponse(t))
	}

	s.writeJson(w, http.StatusOK, todos)
}

func (s *TodoApp) createTodo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Text) < 3 || len(req.Text) > 100 {
		errResp := NewValidationError(map[string]string{"text": "must be between 3 and 100 characters"})
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	todo, err := s.db.CreateTodo(userId, req.Text)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, todoResponse(todo))
}

// updateTodo handles both renames and done-flag toggles. Only the
// owner's todos are visible; anything else reads as forbidden.
func (s *TodoApp) updateTodo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	todoId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Text == "" && req.Done == nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetTodo(todoId, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewForbiddenError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var todo types.Todo
	if req.Text != "" {
		t, err := s.db.UpdateTodoText(todoId, userId, req.Text)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		todo = todoResponse(t)
	}
	if req.Done != nil {
		t, err := s.db.SetTodoDone(todoId, userId, *req.Done)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		todo = todoResponse(t)
	}

	s.writeJson(w, http.StatusOK, todo)
}

func (s *TodoApp) deleteTodo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	todoId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteTodo(todoId, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewForbiddenError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *TodoApp) clearCompletedTodos(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	n, err := s.db.ClearCompletedTodos(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]int64{"deleted": n})
}

func todoResponse(t database.Todo) types.Todo {
	return types.Todo{
		Id:        t.Id,
		Text:      t.Text,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
