package repository

import (
	"context"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationSummary carries one conversation with its derived unread count
// and latest message for list views.
type ConversationSummary struct {
	model.Conversation
	UnreadCount   int64  `json:"unreadCount"`
	LastMessage   string `json:"lastMessage"`
	UserFirstName string `json:"userFirstName"`
	UserLastName  string `json:"userLastName"`
	UserEmail     string `json:"userEmail"`
	VendorName    string `json:"vendorName"`
}

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, userID, vendorID, carID string) (*model.Conversation, error)
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID string) ([]model.Message, error)
	// Unread counts are derived: counterpart messages newer than the
	// reader's last-read timestamp. Nothing is stored, so nothing drifts.
	UnreadCountForUser(ctx context.Context, convID string) (int64, error)
	UnreadCountForAdmin(ctx context.Context, convID string) (int64, error)
	TotalUnreadForUser(ctx context.Context, userID string) (int64, error)
	TotalUnreadForAdmin(ctx context.Context) (int64, error)
	MarkReadByUser(ctx context.Context, convID, userID string) error
	MarkReadByAdmin(ctx context.Context, convID string) error
	ListForUser(ctx context.Context, userID string) ([]ConversationSummary, error)
	ListForAdmin(ctx context.Context) ([]ConversationSummary, error)
	CountTotal(ctx context.Context) (int64, error)
	CountWithVendorReply(ctx context.Context) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, userID, vendorID, carID string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND vendor_id = ? AND car_id = ?", userID, vendorID, carID).
		Attrs(model.Conversation{ID: uuid.NewString(), UserID: userID, VendorID: vendorID, CarID: carID}).
		FirstOrCreate(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepository) ListMessages(ctx context.Context, convID string) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

const unreadForUserExpr = `(
	SELECT COUNT(*)
	FROM messages
	WHERE messages.conversation_id = conversations.id
	  AND messages.sender = 'vendor'
	  AND messages.created_at > COALESCE(conversations.user_last_read_at, '1970-01-01')
)`

const unreadForAdminExpr = `(
	SELECT COUNT(*)
	FROM messages
	WHERE messages.conversation_id = conversations.id
	  AND messages.sender = 'user'
	  AND messages.created_at > COALESCE(conversations.admin_last_read_at, '1970-01-01')
)`

const lastMessageExpr = `(
	SELECT content
	FROM messages
	WHERE messages.conversation_id = conversations.id
	ORDER BY created_at DESC
	LIMIT 1
)`

func (r *conversationRepository) UnreadCountForUser(ctx context.Context, convID string) (int64, error) {
	return r.unreadCount(ctx, convID, unreadForUserExpr)
}

func (r *conversationRepository) UnreadCountForAdmin(ctx context.Context, convID string) (int64, error) {
	return r.unreadCount(ctx, convID, unreadForAdminExpr)
}

func (r *conversationRepository) unreadCount(ctx context.Context, convID, expr string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select(expr).
		Where("conversations.id = ?", convID).
		Scan(&total).Error
	return total, err
}

func (r *conversationRepository) TotalUnreadForUser(ctx context.Context, userID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select("COALESCE(SUM(" + unreadForUserExpr + "), 0)").
		Where("conversations.user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *conversationRepository) TotalUnreadForAdmin(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select("COALESCE(SUM(" + unreadForAdminExpr + "), 0)").
		Scan(&total).Error
	return total, err
}

func (r *conversationRepository) MarkReadByUser(ctx context.Context, convID, userID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND user_id = ?", convID, userID).
		Update("user_last_read_at", time.Now()).Error
}

func (r *conversationRepository) MarkReadByAdmin(ctx context.Context, convID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", convID).
		Update("admin_last_read_at", time.Now()).Error
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]ConversationSummary, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []ConversationSummary
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select(`conversations.*,
			vendors.display_name AS vendor_name,
			` + unreadForUserExpr + ` AS unread_count,
			` + lastMessageExpr + ` AS last_message`).
		Joins("JOIN vendors ON vendors.id = conversations.vendor_id").
		Where("conversations.user_id = ?", userID).
		Order("conversations.created_at DESC").
		Scan(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) ListForAdmin(ctx context.Context) ([]ConversationSummary, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []ConversationSummary
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Select(`conversations.*,
			users.first_name AS user_first_name,
			users.last_name AS user_last_name,
			users.email AS user_email,
			` + unreadForAdminExpr + ` AS unread_count,
			` + lastMessageExpr + ` AS last_message`).
		Joins("JOIN users ON users.id = conversations.user_id").
		Order("conversations.created_at DESC").
		Scan(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) CountTotal(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).Count(&total).Error
	return total, err
}

func (r *conversationRepository) CountWithVendorReply(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("sender = ?", model.SenderVendor).
		Distinct("conversation_id").
		Count(&total).Error
	return total, err
}
