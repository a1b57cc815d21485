package model

import "time"

// swagger:model Announcement
type Announcement struct {
	BaseModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Body        string     `gorm:"type:text" json:"body"`
	Audience    string     `gorm:"size:50;default:'all'" json:"audience"` // all, students, staff
	IsPublished bool       `gorm:"default:true" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuthorID    uint       `gorm:"index;type:bigint unsigned" json:"authorId"`
}

func (Announcement) TableName() string {
	return "announcements"
}
