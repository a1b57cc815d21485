package repository

import (
	"placement_portal_backend/internal/model"

	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	DB *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{DB: db}
}

func (r *AnnouncementRepository) Create(a *model.Announcement) error {
	return r.DB.Create(a).Error
}

func (r *AnnouncementRepository) Update(a *model.Announcement) error {
	return r.DB.Save(a).Error
}

func (r *AnnouncementRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Announcement{}, id).Error
}

func (r *AnnouncementRepository) FindByID(id uint) (*model.Announcement, error) {
	var a model.Announcement
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) List(page, limit int, publishedOnly bool) ([]model.Announcement, int64, error) {
	var items []model.Announcement
	var total int64

	query := r.DB.Model(&model.Announcement{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}
