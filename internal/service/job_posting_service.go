package service

import (
	"errors"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/util"

	"gorm.io/gorm"
)

type JobPostingService struct {
	Repo *repository.JobPostingRepository
}

func NewJobPostingService(repo *repository.JobPostingRepository) *JobPostingService {
	return &JobPostingService{Repo: repo}
}

type JobPostingRequest struct {
	Title       string     `json:"title" binding:"required"`
	Company     string     `json:"company" binding:"required"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Eligibility string     `json:"eligibility"`
	PackageLPA  float64    `json:"packageLpa"`
	Deadline    *time.Time `json:"deadline"`
	IsActive    *bool      `json:"isActive"`
}

func (req *JobPostingRequest) apply(j *model.JobPosting) {
	j.Title = req.Title
	j.Company = req.Company
	j.Location = req.Location
	j.Description = req.Description
	j.Eligibility = req.Eligibility
	j.PackageLPA = req.PackageLPA
	j.Deadline = req.Deadline
	if req.IsActive != nil {
		j.IsActive = *req.IsActive
	}
}

func (s *JobPostingService) Create(req *JobPostingRequest, postedBy uint) (*model.JobPosting, error) {
	j := &model.JobPosting{IsActive: true, PostedBy: postedBy}
	req.apply(j)
	if err := s.Repo.Create(j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JobPostingService) Get(id uint) (*model.JobPosting, error) {
	j, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JobPostingService) Update(id uint, req *JobPostingRequest) (*model.JobPosting, error) {
	j, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	req.apply(j)
	if err := s.Repo.Update(j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JobPostingService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

// ListActive is the student-facing listing: open postings only, deadlines in
// the future.
func (s *JobPostingService) ListActive(page, limit int) ([]model.JobPosting, int64, error) {
	return s.Repo.ListActive(page, limit, time.Now())
}

func (s *JobPostingService) List(page, limit int) ([]model.JobPosting, int64, error) {
	return s.Repo.List(page, limit)
}
