package repository

import (
	"context"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"gorm.io/gorm"
)

type CarRepository interface {
	FindByID(ctx context.Context, id string) (*model.Car, error)
	ListRecent(ctx context.Context, limit int) ([]model.Car, error)
}

type carRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var car model.Car
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) ListRecent(ctx context.Context, limit int) ([]model.Car, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Car
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
