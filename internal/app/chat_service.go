package app

import (
	"context"
	"log"
	"strings"

	"kodechat/internal/model"
	"kodechat/internal/platform/rabbitmq"
	"kodechat/internal/repository"
)

// MessageEventPublisher announces persisted messages to background consumers.
// Publishing is best effort: the message is already durable when it runs.
type MessageEventPublisher interface {
	Publish(ctx context.Context, event rabbitmq.MessageEvent) error
}

// RoomMessageCache is the optional read-path cache in front of the message
// store. Any cache failure degrades silently to the database.
type RoomMessageCache interface {
	GetMessages(ctx context.Context, roomID uint) ([]model.Message, bool, error)
	SetMessages(ctx context.Context, roomID uint, messages []model.Message) error
	Invalidate(ctx context.Context, roomID uint) error
}

type ChatService struct {
	userRepo    *repository.UserRepository
	roomRepo    *repository.RoomRepository
	messageRepo *repository.MessageRepository
	publisher   MessageEventPublisher
	roomCache   RoomMessageCache
}

type PostMessageInput struct {
	Email   string
	Name    string
	RoomID  uint
	Content string
}

func NewChatService(
	userRepo *repository.UserRepository,
	roomRepo *repository.RoomRepository,
	messageRepo *repository.MessageRepository,
	publisher MessageEventPublisher,
	roomCache RoomMessageCache,
) *ChatService {
	return &ChatService{
		userRepo:    userRepo,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
		roomCache:   roomCache,
	}
}

// ListMessages returns every message of the room oldest first, author included.
// Unknown and empty rooms both yield an empty slice.
func (s *ChatService) ListMessages(ctx context.Context, roomID uint) ([]model.Message, error) {
	if s.roomCache != nil {
		cached, hit, err := s.roomCache.GetMessages(ctx, roomID)
		if err != nil {
			log.Printf("room cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	messages, err := s.messageRepo.ListByRoomID(roomID)
	if err != nil {
		return nil, err
	}

	if s.roomCache != nil {
		if err := s.roomCache.SetMessages(ctx, roomID, messages); err != nil {
			log.Printf("room cache write failed: %v", err)
		}
	}
	return messages, nil
}

// PostMessage persists one message attributed to the authenticated user,
// creating the room on first use. The store assigns id and timestamp.
func (s *ChatService) PostMessage(ctx context.Context, input PostMessageInput) (*model.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if input.Email == "" {
		return nil, ErrInvalidInput
	}

	author, err := s.userRepo.GetOrCreateByEmail(input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetOrCreate(input.RoomID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		RoomID:   room.ID,
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	message.Author = *author

	if s.roomCache != nil {
		if err := s.roomCache.Invalidate(ctx, room.ID); err != nil {
			log.Printf("room cache invalidate failed: %v", err)
		}
	}

	if s.publisher != nil {
		event := rabbitmq.MessageEvent{
			RoomID:    room.ID,
			MessageID: message.ID,
			AuthorID:  author.ID,
			PostedAt:  message.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("publish message event failed: %v", err)
		}
	}

	return message, nil
}
