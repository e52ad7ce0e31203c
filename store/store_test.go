package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duetcast/duetcast/store"
	"github.com/duetcast/duetcast/store/test"
)

func sampleTurns() []*store.Turn {
	now := time.Now().Unix()
	return []*store.Turn{
		{Speaker: store.PersonaHumor, Text: "Pineapple is just a hedgehog that gave up.", CreatedTs: now},
		{Speaker: store.PersonaSerious, Text: "Fruit on pizza raises genuine culinary questions.", CreatedTs: now},
		{Speaker: store.PersonaHumor, Text: "So does your haircut.", CreatedTs: now},
	}
}

func TestCreateAndGetConversation(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	user := test.CreateTestingUser(ctx, t, ts, "alice")

	turns := sampleTurns()
	created, err := ts.CreateConversation(ctx, user.ID, "Is pineapple valid on pizza?", turns)
	require.NoError(t, err)
	require.NotEmpty(t, created.UID)
	require.NotZero(t, created.CreatedTs)

	got, err := ts.GetConversation(ctx, created.UID, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Is pineapple valid on pizza?", got.Topic)
	require.Len(t, got.Turns, len(turns))
	for i, turn := range got.Turns {
		require.Equal(t, int32(i), turn.Seq)
		require.Equal(t, turns[i].Speaker, turn.Speaker)
		require.Equal(t, turns[i].Text, turn.Text)
	}
}

func TestGetConversationOwnerScoping(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	alice := test.CreateTestingUser(ctx, t, ts, "alice")
	mallory := test.CreateTestingUser(ctx, t, ts, "mallory")

	created, err := ts.CreateConversation(ctx, alice.ID, "privacy", sampleTurns())
	require.NoError(t, err)

	// Owner sees the record.
	_, err = ts.GetConversation(ctx, created.UID, alice.ID)
	require.NoError(t, err)

	// Anyone else gets not-found, not a distinct error.
	_, err = ts.GetConversation(ctx, created.UID, mallory.ID)
	require.ErrorIs(t, err, store.ErrConversationNotFound)
}

func TestListConversationsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	alice := test.CreateTestingUser(ctx, t, ts, "alice")
	bob := test.CreateTestingUser(ctx, t, ts, "bob")

	_, err := ts.CreateConversation(ctx, alice.ID, "first", sampleTurns())
	require.NoError(t, err)
	_, err = ts.CreateConversation(ctx, alice.ID, "second", sampleTurns())
	require.NoError(t, err)
	_, err = ts.CreateConversation(ctx, bob.ID, "other", sampleTurns())
	require.NoError(t, err)

	list, err := ts.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		require.Equal(t, alice.ID, c.CreatorID)
	}
}

func TestDeleteConversationIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	user := test.CreateTestingUser(ctx, t, ts, "alice")
	created, err := ts.CreateConversation(ctx, user.ID, "ephemeral", sampleTurns())
	require.NoError(t, err)

	require.NoError(t, ts.DeleteConversation(ctx, created.UID, user.ID))

	list, err := ts.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	// Deleting an already-deleted uid is not an error.
	require.NoError(t, ts.DeleteConversation(ctx, created.UID, user.ID))
}

func TestDeleteConversationForeignOwnerIsNoop(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	alice := test.CreateTestingUser(ctx, t, ts, "alice")
	mallory := test.CreateTestingUser(ctx, t, ts, "mallory")

	created, err := ts.CreateConversation(ctx, alice.ID, "keep out", sampleTurns())
	require.NoError(t, err)

	require.NoError(t, ts.DeleteConversation(ctx, created.UID, mallory.ID))

	// The record is still there for its owner.
	_, err = ts.GetConversation(ctx, created.UID, alice.ID)
	require.NoError(t, err)
}

func TestAccessTokenLookup(t *testing.T) {
	ctx := context.Background()
	ts := test.NewTestingStore(ctx, t)
	defer ts.Close()

	user := test.CreateTestingUser(ctx, t, ts, "alice")
	require.NoError(t, ts.CreateAccessToken(ctx, &store.AccessToken{UserID: user.ID, TokenHash: "deadbeef"}))

	got, err := ts.GetUserByTokenHash(ctx, "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)

	missing, err := ts.GetUserByTokenHash(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, missing)
}
