package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `INSERT INTO "user" (username, created_ts) VALUES (?, ?) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, create.Username, create.CreatedTs).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return create, nil
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Username != nil {
		where, args = append(where, "username = "+placeholder(len(args)+1)), append(args, *find.Username)
	}

	query := `SELECT id, username, created_ts FROM "user" WHERE ` + strings.Join(where, " AND ")
	user := &store.User{}
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

func (d *DB) CreateAccessToken(ctx context.Context, create *store.AccessToken) error {
	stmt := `INSERT INTO user_access_token (user_id, token_hash, created_ts) VALUES (?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, stmt, create.UserID, create.TokenHash, create.CreatedTs); err != nil {
		return errors.Wrap(err, "failed to create access token")
	}
	return nil
}

func (d *DB) GetUserByTokenHash(ctx context.Context, tokenHash string) (*store.User, error) {
	query := `SELECT u.id, u.username, u.created_ts
		FROM "user" u
		JOIN user_access_token t ON t.user_id = u.id
		WHERE t.token_hash = ?`
	user := &store.User{}
	err := d.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.Username, &user.CreatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by token")
	}
	return user, nil
}
