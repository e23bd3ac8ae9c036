package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"kodechat/internal/model"
)

// RoomCache keeps the rendered message list of a room in Redis for a short TTL.
// The browser clients poll every few seconds, so even a tiny TTL absorbs most
// of the read load; writes invalidate the room's entry.
type RoomCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRoomCache(client *redisv9.Client, ttl time.Duration) *RoomCache {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &RoomCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RoomCache) GetMessages(ctx context.Context, roomID uint) ([]model.Message, bool, error) {
	key := c.messagesKey(roomID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get room messages failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached room messages failed: %w", err)
	}
	return messages, true, nil
}

func (c *RoomCache) SetMessages(ctx context.Context, roomID uint, messages []model.Message) error {
	key := c.messagesKey(roomID)
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal room messages cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set room messages failed: %w", err)
	}
	return nil
}

func (c *RoomCache) Invalidate(ctx context.Context, roomID uint) error {
	key := c.messagesKey(roomID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis invalidate room messages failed: %w", err)
	}
	return nil
}

func (c *RoomCache) messagesKey(roomID uint) string {
	return fmt.Sprintf("chat:room:%d:messages", roomID)
}
