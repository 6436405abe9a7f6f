package database

import (
	"database/sql"

	"github.com/lib/pq"
)

type PgTodoAppRepository struct {
	conn *sql.DB
}

func NewPgTodoAppRepository(dsn string) (*PgTodoAppRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgTodoAppRepository{conn: db}, nil
}

func (db *PgTodoAppRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgTodoAppRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, used to map duplicate usernames and emails to a conflict.
func IsUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
