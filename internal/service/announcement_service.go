package service

import (
	"errors"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/util"

	"gorm.io/gorm"
)

type AnnouncementService struct {
	Repo *repository.AnnouncementRepository
}

func NewAnnouncementService(repo *repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{Repo: repo}
}

type AnnouncementRequest struct {
	Title       string `json:"title" binding:"required"`
	Body        string `json:"body"`
	Audience    string `json:"audience"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *AnnouncementService) Create(req *AnnouncementRequest, authorID uint) (*model.Announcement, error) {
	a := &model.Announcement{
		Title:       req.Title,
		Body:        req.Body,
		Audience:    req.Audience,
		IsPublished: true,
		AuthorID:    authorID,
	}
	if a.Audience == "" {
		a.Audience = "all"
	}
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
	}
	if a.IsPublished {
		now := time.Now()
		a.PublishedAt = &now
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) Update(id uint, req *AnnouncementRequest) (*model.Announcement, error) {
	a, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Title = req.Title
	a.Body = req.Body
	if req.Audience != "" {
		a.Audience = req.Audience
	}
	if req.IsPublished != nil {
		a.IsPublished = *req.IsPublished
		if a.IsPublished && a.PublishedAt == nil {
			now := time.Now()
			a.PublishedAt = &now
		}
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

func (s *AnnouncementService) List(page, limit int, publishedOnly bool) ([]model.Announcement, int64, error) {
	return s.Repo.List(page, limit, publishedOnly)
}
