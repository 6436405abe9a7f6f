package database

import (
	"github.com/stretchr/testify/mock"
)

type MockTodoAppRepository struct {
	mock.Mock
}

func (m *MockTodoAppRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockTodoAppRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTodoAppRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTodoAppRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTodoAppRepository) ListAccounts(excludeId int) ([]User, error) {
	args := m.Called(excludeId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockTodoAppRepository) SetAccountOnline(accountId int, online bool) error {
	args := m.Called(accountId, online)
	return args.Error(0)
}
func (m *MockTodoAppRepository) GetConversationByExternalId(externalId string) (Conversation, error) {
	args := m.Called(externalId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockTodoAppRepository) FindPrivateConversation(accountA, accountB int) (Conversation, error) {
	args := m.Called(accountA, accountB)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockTodoAppRepository) CreateConversation(params CreateConversationParams) (Conversation, error) {
	args := m.Called(params)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockTodoAppRepository) ListConversations(accountId int) ([]Conversation, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Conversation), args.Error(1)
}
func (m *MockTodoAppRepository) IsParticipant(accountId, conversationId int) bool {
	args := m.Called(accountId, conversationId)
	return args.Bool(0)
}
func (m *MockTodoAppRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockTodoAppRepository) UpdateConversationOnMessage(conversationId int) error {
	args := m.Called(conversationId)
	return args.Error(0)
}
func (m *MockTodoAppRepository) GetMessages(conversationId int) ([]Message, error) {
	args := m.Called(conversationId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockTodoAppRepository) ListTodos(accountId int) ([]Todo, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Todo), args.Error(1)
}
func (m *MockTodoAppRepository) CreateTodo(accountId int, text string) (Todo, error) {
	args := m.Called(accountId, text)
	return args.Get(0).(Todo), args.Error(1)
}
func (m *MockTodoAppRepository) GetTodo(todoId, accountId int) (Todo, error) {
	args := m.Called(todoId, accountId)
	return args.Get(0).(Todo), args.Error(1)
}
func (m *MockTodoAppRepository) UpdateTodoText(todoId, accountId int, text string) (Todo, error) {
	args := m.Called(todoId, accountId, text)
	return args.Get(0).(Todo), args.Error(1)
}
func (m *MockTodoAppRepository) SetTodoDone(todoId, accountId int, done bool) (Todo, error) {
	args := m.Called(todoId, accountId, done)
	return args.Get(0).(Todo), args.Error(1)
}
func (m *MockTodoAppRepository) DeleteTodo(todoId, accountId int) error {
	args := m.Called(todoId, accountId)
	return args.Error(0)
}
func (m *MockTodoAppRepository) ClearCompletedTodos(accountId int) (int64, error) {
	args := m.Called(accountId)
	return args.Get(0).(int64), args.Error(1)
}
