package database

import (
	"database/sql"
)

type PgFocusRepository struct {
	conn *sql.DB
}

func NewPgFocusRepository(dsn string) (*PgFocusRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgFocusRepository{conn: db}, nil
}

func (db *PgFocusRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgFocusRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
