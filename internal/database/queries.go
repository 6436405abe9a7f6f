package database

import (
	"database/sql"
	"fmt"
	"time"
)

func (db *PgTodoAppRepository) CreateAccount(params CreateAccountParams) (User, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		now,
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTodoAppRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, is_online, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.IsOnline,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTodoAppRepository) GetAccountByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, is_online, created_at, updated_at FROM accounts "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.IsOnline,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTodoAppRepository) ListAccounts(excludeId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, is_online FROM accounts "+
			"WHERE id <> $1 ORDER BY username ASC",
		excludeId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Id, &u.Username, &u.IsOnline); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgTodoAppRepository) SetAccountOnline(accountId int, online bool) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET is_online = $2, updated_at = $3 WHERE id = $1",
		accountId,
		online,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTodoAppRepository) GetConversationByExternalId(externalId string) (Conversation, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, name, is_group, created_at, updated_at FROM conversations "+
			"WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var c Conversation
	err := row.Scan(
		&c.Id,
		&c.ExternalId,
		&c.Name,
		&c.IsGroup,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

// FindPrivateConversation returns the non-group conversation whose
// participant set is exactly {accountA, accountB}, in either order.
func (db *PgTodoAppRepository) FindPrivateConversation(accountA, accountB int) (Conversation, error) {
	row := db.conn.QueryRow(
		`SELECT c.id, c.external_id, c.name, c.is_group, c.created_at, c.updated_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		WHERE c.is_group = FALSE
		GROUP BY c.id
		HAVING COUNT(*) = 2 AND bool_and(p.account_id IN ($1, $2))
		LIMIT 1`,
		accountA,
		accountB,
	)

	var c Conversation
	err := row.Scan(
		&c.Id,
		&c.ExternalId,
		&c.Name,
		&c.IsGroup,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (db *PgTodoAppRepository) CreateConversation(params CreateConversationParams) (Conversation, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Conversation{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	row := tx.QueryRow(
		"INSERT INTO conversations (external_id, name, is_group, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, external_id, name, is_group, created_at, updated_at",
		params.ExternalId,
		params.Name,
		params.IsGroup,
		now,
	)

	var c Conversation
	if err := row.Scan(&c.Id, &c.ExternalId, &c.Name, &c.IsGroup, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Conversation{}, err
	}

	for _, memberId := range params.MemberIds {
		if _, err := tx.Exec(
			"INSERT INTO participants (conversation_id, account_id, created_at) VALUES ($1, $2, $3)",
			c.Id,
			memberId,
			now,
		); err != nil {
			return Conversation{}, fmt.Errorf("insert participant %d: %w", memberId, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Conversation{}, fmt.Errorf("commit tx: %w", err)
	}

	c.Participants, err = db.listParticipants(c.Id)
	if err != nil {
		return Conversation{}, err
	}

	return c, nil
}

func (db *PgTodoAppRepository) listParticipants(conversationId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.username, a.is_online FROM participants p "+
			"JOIN accounts a ON a.id = p.account_id "+
			"WHERE p.conversation_id = $1 ORDER BY a.username ASC",
		conversationId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Id, &u.Username, &u.IsOnline); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ListConversations returns the account's conversations ordered by last
// activity, each carrying its most recent message for preview.
func (db *PgTodoAppRepository) ListConversations(accountId int) ([]Conversation, error) {
	query := `
		SELECT
				c.id,
				c.external_id,
				c.name,
				c.is_group,
				c.created_at,
				c.updated_at,
				m.id,
				m.user_id,
				m.content,
				m.kind,
				m.attachment,
				m.created_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		LEFT JOIN LATERAL (
				SELECT id, user_id, content, kind, attachment, created_at
				FROM messages
				WHERE conversation_id = c.id
				ORDER BY created_at DESC, id DESC
				LIMIT 1
		) m ON TRUE
		WHERE p.account_id = $1
		ORDER BY c.updated_at DESC;
`

	rows, err := db.conn.Query(query, accountId)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var (
			c             Conversation
			msgId         sql.NullInt64
			msgUserId     sql.NullInt64
			msgContent    sql.NullString
			msgKind       sql.NullString
			msgAttachment sql.NullString
			msgCreatedAt  sql.NullTime
		)

		err := rows.Scan(
			&c.Id,
			&c.ExternalId,
			&c.Name,
			&c.IsGroup,
			&c.CreatedAt,
			&c.UpdatedAt,
			&msgId,
			&msgUserId,
			&msgContent,
			&msgKind,
			&msgAttachment,
			&msgCreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if msgId.Valid {
			c.LastMessage = &Message{
				Id:             int(msgId.Int64),
				ConversationId: c.Id,
				UserId:         int(msgUserId.Int64),
				Content:        msgContent.String,
				Kind:           msgKind.String,
				Attachment:     msgAttachment.String,
				CreatedAt:      msgCreatedAt.Time,
			}
		}

		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range conversations {
		participants, err := db.listParticipants(conversations[i].Id)
		if err != nil {
			return nil, err
		}
		conversations[i].Participants = participants
	}

	return conversations, nil
}

func (db *PgTodoAppRepository) IsParticipant(accountId, conversationId int) bool {
	var exists bool
	err := db.conn.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM participants WHERE account_id = $1 AND conversation_id = $2)",
		accountId,
		conversationId,
	).Scan(&exists)

	return err == nil && exists
}

func (db *PgTodoAppRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	row := db.conn.QueryRow(
		"INSERT INTO messages (conversation_id, user_id, content, kind, attachment, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, conversation_id, user_id, content, kind, attachment, created_at",
		params.ConversationId,
		params.UserId,
		params.Content,
		params.Kind,
		params.Attachment,
		time.Now().UTC(),
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.ConversationId,
		&m.UserId,
		&m.Content,
		&m.Kind,
		&m.Attachment,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgTodoAppRepository) UpdateConversationOnMessage(conversationId int) error {
	_, err := db.conn.Exec(
		"UPDATE conversations SET updated_at = $2 WHERE id = $1",
		conversationId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTodoAppRepository) GetMessages(conversationId int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, conversation_id, user_id, content, kind, attachment, created_at FROM messages "+
			"WHERE conversation_id = $1 ORDER BY created_at ASC, id ASC",
		conversationId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(
			&m.Id,
			&m.ConversationId,
			&m.UserId,
			&m.Content,
			&m.Kind,
			&m.Attachment,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgTodoAppRepository) ListTodos(accountId int) ([]Todo, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, text, done, created_at, updated_at FROM todos "+
			"WHERE user_id = $1 ORDER BY created_at DESC",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.Id, &t.UserId, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

func (db *PgTodoAppRepository) CreateTodo(accountId int, text string) (Todo, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRow(
		"INSERT INTO todos (user_id, text, done, created_at, updated_at) "+
			"VALUES ($1, $2, FALSE, $3, $3) RETURNING id, user_id, text, done, created_at, updated_at",
		accountId,
		text,
		now,
	)

	var t Todo
	err := row.Scan(&t.Id, &t.UserId, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (db *PgTodoAppRepository) GetTodo(todoId, accountId int) (Todo, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, text, done, created_at, updated_at FROM todos "+
			"WHERE id = $1 AND user_id = $2 LIMIT 1",
		todoId,
		accountId,
	)

	var t Todo
	err := row.Scan(&t.Id, &t.UserId, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (db *PgTodoAppRepository) UpdateTodoText(todoId, accountId int, text string) (Todo, error) {
	row := db.conn.QueryRow(
		"UPDATE todos SET text = $3, updated_at = $4 WHERE id = $1 AND user_id = $2 "+
			"RETURNING id, user_id, text, done, created_at, updated_at",
		todoId,
		accountId,
		text,
		time.Now().UTC(),
	)

	var t Todo
	err := row.Scan(&t.Id, &t.UserId, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (db *PgTodoAppRepository) SetTodoDone(todoId, accountId int, done bool) (Todo, error) {
	row := db.conn.QueryRow(
		"UPDATE todos SET done = $3, updated_at = $4 WHERE id = $1 AND user_id = $2 "+
			"RETURNING id, user_id, text, done, created_at, updated_at",
		todoId,
		accountId,
		done,
		time.Now().UTC(),
	)

	var t Todo
	err := row.Scan(&t.Id, &t.UserId, &t.Text, &t.Done, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (db *PgTodoAppRepository) DeleteTodo(todoId, accountId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM todos WHERE id = $1 AND user_id = $2",
		todoId,
		accountId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgTodoAppRepository) ClearCompletedTodos(accountId int) (int64, error) {
	res, err := db.conn.Exec(
		"DELETE FROM todos WHERE user_id = $1 AND done = TRUE",
		accountId,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
