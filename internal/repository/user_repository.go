package repository

import (
	"context"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	CountActive(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ? AND is_active = ?", "user", true).
		Count(&total).Error
	return total, err
}

func (r *userRepository) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", "user").
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
