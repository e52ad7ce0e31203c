package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	fields := []string{"uid", "creator_id", "topic", "created_ts"}
	args := []any{create.UID, create.CreatorID, create.Topic, create.CreatedTs}
	stmt := `INSERT INTO conversation (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := tx.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}

	for _, turn := range create.Turns {
		turn.ConversationID = create.ID
		fields := []string{"uid", "conversation_id", "seq", "speaker", "text", "created_ts"}
		args := []any{turn.UID, turn.ConversationID, turn.Seq, string(turn.Speaker), turn.Text, turn.CreatedTs}
		stmt := `INSERT INTO turn (` + strings.Join(fields, ", ") + `)
			VALUES (` + placeholders(len(args)) + `)
			RETURNING id`
		if err := tx.QueryRowContext(ctx, stmt, args...).Scan(&turn.ID); err != nil {
			return nil, errors.Wrap(err, "failed to create turn")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit conversation")
	}
	return create, nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}

	query := `SELECT id, uid, creator_id, topic, created_ts FROM conversation WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	list := make([]*store.Conversation, 0)
	for rows.Next() {
		c := &store.Conversation{}
		if err := rows.Scan(&c.ID, &c.UID, &c.CreatorID, &c.Topic, &c.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation")
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate conversations")
	}
	return list, nil
}

func (d *DB) GetConversation(ctx context.Context, find *store.FindConversation) (*store.Conversation, error) {
	list, err := d.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) DeleteConversation(ctx context.Context, delete *store.DeleteConversation) (bool, error) {
	var id int32
	err := d.db.QueryRowContext(ctx, `SELECT id FROM conversation WHERE uid = $1 AND creator_id = $2`, delete.UID, delete.CreatorID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to find conversation")
	}

	// Delete turns first
	if _, err := d.db.ExecContext(ctx, `DELETE FROM turn WHERE conversation_id = $1`, id); err != nil {
		return false, errors.Wrap(err, "failed to delete turns")
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM conversation WHERE id = $1`, id); err != nil {
		return false, errors.Wrap(err, "failed to delete conversation")
	}
	return true, nil
}

func (d *DB) ListTurns(ctx context.Context, conversationID int32) ([]*store.Turn, error) {
	query := `SELECT id, uid, conversation_id, seq, speaker, text, created_ts FROM turn WHERE conversation_id = $1 ORDER BY seq ASC`
	rows, err := d.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list turns")
	}
	defer rows.Close()

	list := make([]*store.Turn, 0)
	for rows.Next() {
		t := &store.Turn{}
		var speaker string
		if err := rows.Scan(&t.ID, &t.UID, &t.ConversationID, &t.Seq, &speaker, &t.Text, &t.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan turn")
		}
		t.Speaker = store.Persona(speaker)
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate turns")
	}
	return list, nil
}
