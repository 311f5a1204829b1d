package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to
	// the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic status guard matched no rows,
	// meaning another request already transitioned the entity.
	ErrConflict = errors.New("conflicting state change")
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
