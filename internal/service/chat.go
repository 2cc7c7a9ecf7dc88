package service

import (
	"context"
	"errors"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"gorm.io/gorm"
)

// UserMessageResult is everything the relay needs to ack the sender and fan
// the message out to the admin room.
type UserMessageResult struct {
	ConversationID string
	From           string
	CarID          string
	VendorID       string
}

// AdminConversationView bundles a conversation's messages with its user for
// the operator message panel. Fetching it marks the conversation admin-read.
type AdminConversationView struct {
	ConversationID string          `json:"conversationId"`
	User           *model.User     `json:"user"`
	Messages       []model.Message `json:"messages"`
}

type ChatService interface {
	// SendUserMessage persists a buyer message against the (user, vendor,
	// car) conversation, creating it on first contact.
	SendUserMessage(ctx context.Context, userID, carID, content string) (*UserMessageResult, error)
	// ResolveConversation maps (user, car) to the conversation id without
	// persisting anything; used by typing events.
	ResolveConversation(ctx context.Context, userID, carID string) (string, error)
	// SendVendorMessage appends an operator reply to an existing
	// conversation.
	SendVendorMessage(ctx context.Context, conversationID, content string) error
	ListForUser(ctx context.Context, userID string) ([]repository.ConversationSummary, error)
	ListForAdmin(ctx context.Context) ([]repository.ConversationSummary, error)
	AdminConversation(ctx context.Context, conversationID string) (*AdminConversationView, error)
	MarkReadByUser(ctx context.Context, conversationID, userID string) error
	TotalUnreadForUser(ctx context.Context, userID string) (int64, error)
}

type chatService struct {
	convs repository.ConversationRepository
	cars  repository.CarRepository
	users repository.UserRepository
}

func NewChatService(convs repository.ConversationRepository, cars repository.CarRepository, users repository.UserRepository) ChatService {
	return &chatService{convs: convs, cars: cars, users: users}
}

func (s *chatService) SendUserMessage(ctx context.Context, userID, carID, content string) (*UserMessageResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if carID == "" || content == "" {
		return nil, ErrInvalidRequest
	}
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	cv, err := s.convs.FindOrCreate(ctx, userID, car.VendorID, car.ID)
	if err != nil {
		return nil, err
	}
	if err := s.convs.CreateMessage(ctx, &model.Message{
		ConversationID: cv.ID,
		Sender:         model.SenderUser,
		Content:        content,
	}); err != nil {
		return nil, err
	}

	from := "User"
	if u, err := s.users.FindByID(ctx, userID); err == nil {
		if name := u.FullName(); name != "" {
			from = name
		}
	}
	return &UserMessageResult{
		ConversationID: cv.ID,
		From:           from,
		CarID:          car.ID,
		VendorID:       car.VendorID,
	}, nil
}

func (s *chatService) ResolveConversation(ctx context.Context, userID, carID string) (string, error) {
	if userID == "" || carID == "" {
		return "", ErrInvalidRequest
	}
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	cv, err := s.convs.FindOrCreate(ctx, userID, car.VendorID, car.ID)
	if err != nil {
		return "", err
	}
	return cv.ID, nil
}

func (s *chatService) SendVendorMessage(ctx context.Context, conversationID, content string) error {
	if conversationID == "" || content == "" {
		return ErrInvalidRequest
	}
	return s.convs.CreateMessage(ctx, &model.Message{
		ConversationID: conversationID,
		Sender:         model.SenderVendor,
		Content:        content,
	})
}

func (s *chatService) ListForUser(ctx context.Context, userID string) ([]repository.ConversationSummary, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.convs.ListForUser(ctx, userID)
}

func (s *chatService) ListForAdmin(ctx context.Context) ([]repository.ConversationSummary, error) {
	return s.convs.ListForAdmin(ctx)
}

func (s *chatService) AdminConversation(ctx context.Context, conversationID string) (*AdminConversationView, error) {
	cv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	msgs, err := s.convs.ListMessages(ctx, cv.ID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, cv.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.convs.MarkReadByAdmin(ctx, cv.ID); err != nil {
		return nil, err
	}
	return &AdminConversationView{
		ConversationID: cv.ID,
		User:           user,
		Messages:       msgs,
	}, nil
}

func (s *chatService) MarkReadByUser(ctx context.Context, conversationID, userID string) error {
	if conversationID == "" || userID == "" {
		return ErrInvalidRequest
	}
	return s.convs.MarkReadByUser(ctx, conversationID, userID)
}

func (s *chatService) TotalUnreadForUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthorized
	}
	return s.convs.TotalUnreadForUser(ctx, userID)
}
