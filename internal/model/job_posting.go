package model

import "time"

// swagger:model JobPosting
type JobPosting struct {
	BaseModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Company     string     `gorm:"size:255;not null" json:"company"`
	Location    string     `gorm:"size:255" json:"location"`
	Description string     `gorm:"type:text" json:"description"`
	Eligibility string     `gorm:"type:text" json:"eligibility"`
	PackageLPA  float64    `gorm:"default:0" json:"packageLpa"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	PostedBy    uint       `gorm:"index;type:bigint unsigned" json:"postedBy"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}
