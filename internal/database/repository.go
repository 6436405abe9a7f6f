package database

type TodoAppRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByUsername(username string) (User, error)
	ListAccounts(excludeId int) ([]User, error)
	SetAccountOnline(accountId int, online bool) error
	GetConversationByExternalId(externalId string) (Conversation, error)
	FindPrivateConversation(accountA, accountB int) (Conversation, error)
	CreateConversation(params CreateConversationParams) (Conversation, error)
	ListConversations(accountId int) ([]Conversation, error)
	IsParticipant(accountId, conversationId int) bool
	CreateMessage(params CreateMessageParams) (Message, error)
	UpdateConversationOnMessage(conversationId int) error
	GetMessages(conversationId int) ([]Message, error)
	ListTodos(accountId int) ([]Todo, error)
	CreateTodo(accountId int, text string) (Todo, error)
	GetTodo(todoId, accountId int) (Todo, error)
	UpdateTodoText(todoId, accountId int, text string) (Todo, error)
	SetTodoDone(todoId, accountId int, done bool) (Todo, error)
	DeleteTodo(todoId, accountId int) error
	ClearCompletedTodos(accountId int) (int64, error)
}
