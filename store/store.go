package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/store/cache"
)

// ErrConversationNotFound is returned when a conversation does not exist for
// the requesting owner. An existing record under another owner is reported
// with this same error so that nothing leaks about foreign records.
var ErrConversationNotFound = errors.New("conversation not found")

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// conversationCache caches per-user conversation lists.
	conversationCache *cache.LRUCache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:            driver,
		profile:           profile,
		conversationCache: cache.NewLRUCache(1000, 10*time.Minute),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func listCacheKey(creatorID int32) string {
	return fmt.Sprintf("conversations:%d:list", creatorID)
}

// CreateConversation persists a finished transcript under the given owner.
// The server assigns the UID and the creation timestamp here; the in-memory
// show never carries either.
func (s *Store) CreateConversation(ctx context.Context, creatorID int32, topic string, turns []*Turn) (*Conversation, error) {
	create := &Conversation{
		UID:       shortuuid.New(),
		CreatorID: creatorID,
		Topic:     topic,
		CreatedTs: time.Now().Unix(),
		Turns:     turns,
	}
	for i, turn := range create.Turns {
		turn.Seq = int32(i)
		if turn.UID == "" {
			turn.UID = shortuuid.New()
		}
	}

	conversation, err := s.driver.CreateConversation(ctx, create)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}
	s.conversationCache.Invalidate(fmt.Sprintf("conversations:%d:*", creatorID))
	return conversation, nil
}

// ListConversations returns the owner's conversations, newest first,
// without their turns.
func (s *Store) ListConversations(ctx context.Context, creatorID int32) ([]*Conversation, error) {
	if cached, ok := s.conversationCache.Get(listCacheKey(creatorID)); ok {
		return cached.([]*Conversation), nil
	}

	list, err := s.driver.ListConversations(ctx, &FindConversation{CreatorID: &creatorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	s.conversationCache.Set(listCacheKey(creatorID), list, 0)
	return list, nil
}

// GetConversation fetches one conversation with its turns. An owner mismatch
// is indistinguishable from a missing record.
func (s *Store) GetConversation(ctx context.Context, uid string, creatorID int32) (*Conversation, error) {
	conversation, err := s.driver.GetConversation(ctx, &FindConversation{UID: &uid, CreatorID: &creatorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get conversation")
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	turns, err := s.driver.ListTurns(ctx, conversation.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list turns")
	}
	conversation.Turns = turns
	return conversation, nil
}

// DeleteConversation removes the owner's conversation. Deleting an id that
// does not exist (or is owned by someone else) is not an error.
func (s *Store) DeleteConversation(ctx context.Context, uid string, creatorID int32) error {
	if _, err := s.driver.DeleteConversation(ctx, &DeleteConversation{UID: uid, CreatorID: creatorID}); err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	s.conversationCache.Invalidate(fmt.Sprintf("conversations:%d:*", creatorID))
	return nil
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	return s.driver.GetUser(ctx, find)
}

func (s *Store) CreateAccessToken(ctx context.Context, create *AccessToken) error {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateAccessToken(ctx, create)
}

func (s *Store) GetUserByTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	return s.driver.GetUserByTokenHash(ctx, tokenHash)
}
