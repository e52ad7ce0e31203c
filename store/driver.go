package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) (bool, error)

	// Turn model related methods.
	ListTurns(ctx context.Context, conversationID int32) ([]*Turn, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	CreateAccessToken(ctx context.Context, create *AccessToken) error
	GetUserByTokenHash(ctx context.Context, tokenHash string) (*User, error)
}
