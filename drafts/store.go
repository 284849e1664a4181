package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

// Drafts are abandoned silently if onboarding never finishes; the TTL
// keeps them from piling up
const draftTTL = 30 * 24 * time.Hour

// DecodeError reports a stored draft payload that could not be decoded
// into a PropertyDraft. Callers get a defined error instead of a
// silently partial record.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("drafts: decoding %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Store persists property drafts keyed by (userID, draftID)
type Store interface {
	SaveDraft(ctx context.Context, userID uint, draft *models.PropertyDraft) error
	LoadDraft(ctx context.Context, userID uint, draftID string) (*models.PropertyDraft, error)
	DeleteDraft(ctx context.Context, userID uint, draftID string) error
}

// RedisStore keeps drafts as JSON values in Redis
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func draftKey(userID uint, draftID string) string {
	return fmt.Sprintf("draft:user:%d:%s", userID, draftID)
}

func (s *RedisStore) SaveDraft(ctx context.Context, userID uint, draft *models.PropertyDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(userID, draft.ID), payload, draftTTL).Err()
}

// LoadDraft returns (nil, nil) when no draft exists under the key;
// absence is not an error
func (s *RedisStore) LoadDraft(ctx context.Context, userID uint, draftID string) (*models.PropertyDraft, error) {
	key := draftKey(userID, draftID)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft models.PropertyDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}
	if draft.PropertyData == nil {
		draft.PropertyData = map[string]any{}
	}
	return &draft, nil
}

func (s *RedisStore) DeleteDraft(ctx context.Context, userID uint, draftID string) error {
	return s.client.Del(ctx, draftKey(userID, draftID)).Err()
}
