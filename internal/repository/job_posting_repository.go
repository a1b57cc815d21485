package repository

import (
	"time"

	"placement_portal_backend/internal/model"

	"gorm.io/gorm"
)

type JobPostingRepository struct {
	DB *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) *JobPostingRepository {
	return &JobPostingRepository{DB: db}
}

func (r *JobPostingRepository) Create(j *model.JobPosting) error {
	return r.DB.Create(j).Error
}

func (r *JobPostingRepository) Update(j *model.JobPosting) error {
	return r.DB.Save(j).Error
}

func (r *JobPostingRepository) Delete(id uint) error {
	return r.DB.Delete(&model.JobPosting{}, id).Error
}

func (r *JobPostingRepository) FindByID(id uint) (*model.JobPosting, error) {
	var j model.JobPosting
	if err := r.DB.First(&j, id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// ListActive returns open postings whose deadline has not passed.
func (r *JobPostingRepository) ListActive(page, limit int, now time.Time) ([]model.JobPosting, int64, error) {
	var items []model.JobPosting
	var total int64

	query := r.DB.Model(&model.JobPosting{}).
		Where("is_active = ?", true).
		Where("deadline IS NULL OR deadline > ?", now)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (r *JobPostingRepository) List(page, limit int) ([]model.JobPosting, int64, error) {
	var items []model.JobPosting
	var total int64

	query := r.DB.Model(&model.JobPosting{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}
