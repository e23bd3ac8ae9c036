package app

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kodechat/internal/model"
	"kodechat/internal/platform/rabbitmq"
	"kodechat/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Room{}, &model.Message{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

type capturingPublisher struct {
	events []rabbitmq.MessageEvent
	fail   bool
}

func (p *capturingPublisher) Publish(_ context.Context, event rabbitmq.MessageEvent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, event)
	return nil
}

type fakeRoomCache struct {
	entries     map[uint][]model.Message
	invalidated []uint
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{entries: make(map[uint][]model.Message)}
}

func (c *fakeRoomCache) GetMessages(_ context.Context, roomID uint) ([]model.Message, bool, error) {
	messages, ok := c.entries[roomID]
	return messages, ok, nil
}

func (c *fakeRoomCache) SetMessages(_ context.Context, roomID uint, messages []model.Message) error {
	c.entries[roomID] = messages
	return nil
}

func (c *fakeRoomCache) Invalidate(_ context.Context, roomID uint) error {
	delete(c.entries, roomID)
	c.invalidated = append(c.invalidated, roomID)
	return nil
}

func newTestChatService(t *testing.T, db *gorm.DB, publisher MessageEventPublisher, roomCache RoomMessageCache) *ChatService {
	t.Helper()
	return NewChatService(
		repository.NewUserRepository(db),
		repository.NewRoomRepository(db),
		repository.NewMessageRepository(db),
		publisher,
		roomCache,
	)
}

func TestPostMessage_CreatesRoomAndMessage(t *testing.T) {
	db := setupTestDB(t)
	publisher := &capturingPublisher{}
	svc := newTestChatService(t, db, publisher, nil)
	ctx := context.Background()

	msg, err := svc.PostMessage(ctx, PostMessageInput{
		Email:   "ada@example.com",
		Name:    "Ada",
		RoomID:  9,
		Content: "  hello room nine  ",
	})
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected store-assigned message id")
	}
	if msg.Content != "hello room nine" {
		t.Errorf("expected trimmed content, got %q", msg.Content)
	}
	if msg.Author.Email != "ada@example.com" {
		t.Errorf("expected author email on returned message, got %q", msg.Author.Email)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected store-assigned timestamp")
	}

	var roomCount, msgCount int64
	db.Model(&model.Room{}).Count(&roomCount)
	db.Model(&model.Message{}).Count(&msgCount)
	if roomCount != 1 {
		t.Errorf("expected implicit room creation, got %d rooms", roomCount)
	}
	if msgCount != 1 {
		t.Errorf("expected exactly one message, got %d", msgCount)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	if publisher.events[0].RoomID != 9 || publisher.events[0].MessageID != msg.ID {
		t.Errorf("unexpected event payload: %+v", publisher.events[0])
	}
}

func TestPostMessage_EmptyContent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestChatService(t, db, nil, nil)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := svc.PostMessage(ctx, PostMessageInput{
			Email:   "ada@example.com",
			RoomID:  1,
			Content: content,
		})
		if !errors.Is(err, ErrEmptyContent) {
			t.Errorf("content %q: expected ErrEmptyContent, got %v", content, err)
		}
	}

	var msgCount int64
	db.Model(&model.Message{}).Count(&msgCount)
	if msgCount != 0 {
		t.Errorf("nothing must be persisted on validation failure, got %d messages", msgCount)
	}
}

func TestPostMessage_PublisherFailureDoesNotFailRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestChatService(t, db, &capturingPublisher{fail: true}, nil)

	msg, err := svc.PostMessage(context.Background(), PostMessageInput{
		Email:   "ada@example.com",
		RoomID:  1,
		Content: "hi",
	})
	if err != nil {
		t.Fatalf("PostMessage() must succeed despite publish failure, got %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected persisted message")
	}
}

func TestListMessages_EmptyRoom(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestChatService(t, db, nil, nil)

	messages, err := svc.ListMessages(context.Background(), 12345)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if messages == nil {
		t.Fatal("expected empty slice for unknown room, got nil")
	}
	if len(messages) != 0 {
		t.Errorf("expected no messages, got %d", len(messages))
	}
}

func TestPostThenList_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestChatService(t, db, nil, nil)
	ctx := context.Background()

	posted, err := svc.PostMessage(ctx, PostMessageInput{
		Email:   "ada@example.com",
		Name:    "Ada",
		RoomID:  3,
		Content: "round trip",
	})
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	messages, err := svc.ListMessages(ctx, 3)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}
	got := messages[0]
	if got.ID != posted.ID || got.Content != posted.Content || got.Author.Email != posted.Author.Email {
		t.Errorf("round trip mismatch: posted %+v, listed %+v", posted, got)
	}
}

func TestListMessages_UsesAndFillsCache(t *testing.T) {
	db := setupTestDB(t)
	roomCache := newFakeRoomCache()
	svc := newTestChatService(t, db, nil, roomCache)
	ctx := context.Background()

	if _, err := svc.PostMessage(ctx, PostMessageInput{Email: "a@example.com", RoomID: 1, Content: "one"}); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if len(roomCache.invalidated) != 1 {
		t.Fatalf("expected cache invalidation on post, got %v", roomCache.invalidated)
	}

	// First list fills the cache from the database.
	first, err := svc.ListMessages(ctx, 1)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if _, hit, _ := roomCache.GetMessages(ctx, 1); !hit {
		t.Fatal("expected cache to be filled after a miss")
	}

	// Second list is served from the cache even if the table changes underneath.
	if err := db.Exec("DELETE FROM messages").Error; err != nil {
		t.Fatalf("clear messages: %v", err)
	}
	second, err := svc.ListMessages(ctx, 1)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("expected cached result of %d messages, got %d", len(first), len(second))
	}
}
