package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/server"
	"github.com/ajayramola/todo-app/internal/types"
	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"
)

type CreatePrivateChatRequest struct {
	OtherUserId int `json:"other_user_id"`
}

type CreateGroupRequest struct {
	Name      string `json:"name"`
	MemberIds []int  `json:"member_ids"`
}

type SendMessageRequest struct {
	ConversationId string `json:"conversation_id"`
	Content        string `json:"content"`
	Kind           string `json:"kind"`
	Attachment     string `json:"attachment"`
}

func (s *TodoApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *TodoApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *TodoApp) listUsers(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUsers, err := s.db.ListAccounts(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	users := make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, types.User{
			Id:       u.Id,
			Username: u.Username,
			IsOnline: u.IsOnline,
		})
	}

	s.writeJson(w, http.StatusOK, users)
}

// createPrivateChat is idempotent: if a direct conversation between the
// two accounts already exists it is returned instead of a new one.
func (s *TodoApp) createPrivateChat(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreatePrivateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.OtherUserId == 0 || req.OtherUserId == userId {
		errResp := NewValidationError(map[string]string{"other_user_id": "must name another account"})
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAccountById(req.OtherUserId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	existing, err := s.db.FindPrivateConversation(userId, req.OtherUserId)
	if err == nil {
		s.writeJson(w, http.StatusOK, s.conversationResponse(existing))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sid, err := shortid.Generate()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.CreateConversation(database.CreateConversationParams{
		ExternalId: sid,
		IsGroup:    false,
		MemberIds:  []int{userId, req.OtherUserId},
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.conversationResponse(conv))
}

func (s *TodoApp) createGroup(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewValidationError(map[string]string{"name": "must not be empty"})
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// the creator is always a participant, whether or not the request
	// lists them
	memberIds := []int{userId}
	for _, id := range req.MemberIds {
		if !slices.Contains(memberIds, id) {
			memberIds = append(memberIds, id)
		}
	}

	sid, err := shortid.Generate()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.CreateConversation(database.CreateConversationParams{
		ExternalId: sid,
		Name:       req.Name,
		IsGroup:    true,
		MemberIds:  memberIds,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.conversationResponse(conv))
}

func (s *TodoApp) listConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbConvs, err := s.db.ListConversations(userId)
	if err != nil {
		s.log.Println("list conversations:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	convs := make([]types.Conversation, 0, len(dbConvs))
	for _, c := range dbConvs {
		convs = append(convs, s.conversationResponse(c))
	}

	s.writeJson(w, http.StatusOK, convs)
}

// sendMessage persists the message and only then hands it to the broker
// for fanout to live subscribers.
func (s *TodoApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Kind == "" {
		req.Kind = types.KindText
	}

	fields := make(map[string]string)
	if req.ConversationId == "" {
		fields["conversation_id"] = "must not be empty"
	}
	switch req.Kind {
	case types.KindText, types.KindCode:
		if req.Content == "" {
			fields["content"] = "must not be empty"
		}
	case types.KindImage:
		if req.Attachment == "" {
			fields["attachment"] = "must not be empty for image messages"
		}
		if req.Content == "" {
			req.Content = "Sent an image"
		}
	default:
		fields["kind"] = "must be one of text, code, image"
	}
	if len(fields) > 0 {
		errResp := NewValidationError(fields)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.GetConversationByExternalId(req.ConversationId)
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

	if !s.db.IsParticipant(userId, conv.Id) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMsg, err := s.db.CreateMessage(database.CreateMessageParams{
		ConversationId: conv.Id,
		UserId:         userId,
		Content:        req.Content,
		Kind:           req.Kind,
		Attachment:     req.Attachment,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// bump last activity so the conversation surfaces first in lists
	if err := s.db.UpdateConversationOnMessage(conv.Id); err != nil {
		s.log.Println("update conversation on message:", err)
	}

	msg := types.Message{
		Id:             dbMsg.Id,
		ConversationId: conv.ExternalId,
		UserId:         dbMsg.UserId,
		Content:        dbMsg.Content,
		Kind:           dbMsg.Kind,
		Attachment:     dbMsg.Attachment,
		Timestamp:      dbMsg.CreatedAt,
	}

	s.cs.PublishMessage(conv.ExternalId, &msg)

	s.writeJson(w, http.StatusCreated, msg)
}

func (s *TodoApp) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	externalId := r.URL.Query().Get("conversation_id")
	if externalId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.GetConversationByExternalId(externalId)
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

	if !s.db.IsParticipant(userId, conv.Id) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetMessages(conv.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userMessages := make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		userMessages = append(userMessages, types.Message{
			Id:             msg.Id,
			ConversationId: conv.ExternalId,
			UserId:         msg.UserId,
			Content:        msg.Content,
			Kind:           msg.Kind,
			Attachment:     msg.Attachment,
			Timestamp:      msg.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, userMessages)
}

func (s *TodoApp) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
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

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(types.User{
		Id:           user.Id,
		Username:     user.Username,
		EmailAddress: user.EmailAddress,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}, conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}

func (s *TodoApp) conversationResponse(c database.Conversation) types.Conversation {
	conv := types.Conversation{
		Id:        c.ExternalId,
		Name:      c.Name,
		IsGroup:   c.IsGroup,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	for _, p := range c.Participants {
		conv.Participants = append(conv.Participants, types.User{
			Id:       p.Id,
			Username: p.Username,
			IsOnline: p.IsOnline,
		})
	}

	if c.LastMessage != nil {
		conv.LastMessage = &types.Message{
			Id:             c.LastMessage.Id,
			ConversationId: c.ExternalId,
			UserId:         c.LastMessage.UserId,
			Content:        c.LastMessage.Content,
			Kind:           c.LastMessage.Kind,
			Attachment:     c.LastMessage.Attachment,
			Timestamp:      c.LastMessage.CreatedAt,
		}
	}

	return conv
}
