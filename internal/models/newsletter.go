package models

import "time"

// NewsletterIssueModel is one published issue together with its dispatch
// outcome. Content is the raw Markdown and doubles as the plain-text body.
type NewsletterIssueModel struct {
	Base
	Title       string     `json:"title"        gorm:"not null"`
	Content     string     `json:"content"      gorm:"type:text"`
	HTML        string     `json:"html"         gorm:"type:text"`
	PublishedAt *time.Time `json:"published_at" gorm:"index"`
	Delivered   int        `json:"delivered"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
}

func (NewsletterIssueModel) TableName() string { return "newsletter_issues" }
