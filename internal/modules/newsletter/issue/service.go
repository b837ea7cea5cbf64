package issue

import (
	"bytes"
	"errors"
	"html/template"
	"time"

	"github.com/Till769/zero2prod/internal/models"
	"github.com/Till769/zero2prod/internal/modules/newsletter/subscription"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	pkgmail "github.com/Till769/zero2prod/internal/pkg/mail"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

func renderHTML(markdown string) (string, error) {
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(markdown), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

type Service struct {
	db     *gorm.DB
	cfgSvc *appconfigs.Service
	log    *zap.Logger

	// newMailer builds the sender per publish so runtime mail settings take
	// effect without a restart.
	newMailer func(cfg pkgmail.Config) pkgmail.EmailSender
}

func NewService(db *gorm.DB, cfgSvc *appconfigs.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:     db,
		cfgSvc: cfgSvc,
		log:    log,
		newMailer: func(cfg pkgmail.Config) pkgmail.EmailSender {
			return pkgmail.New(cfg)
		},
	}
}

// Publish renders the Markdown content, stores the issue and mails it to
// every confirmed subscriber. A recipient with an unusable stored address is
// skipped; a transport failure is counted and the loop moves on, so one bad
// mailbox never blocks the rest of the list.
func (s *Service) Publish(title, content string) (*models.NewsletterIssueModel, error) {
	html, err := renderHTML(content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	iss := models.NewsletterIssueModel{
		Title:       title,
		Content:     content,
		HTML:        html,
		PublishedAt: &now,
	}
	if err := s.db.Create(&iss).Error; err != nil {
		return nil, err
	}

	cfg, err := s.cfgSvc.Get()
	if err != nil {
		return nil, err
	}

	var subscribers []models.SubscriberModel
	if err := s.db.Where("status = ?", models.SubscriberStatusConfirmed).
		Find(&subscribers).Error; err != nil {
		return nil, err
	}

	body, err := pkgmail.RenderIssue(pkgmail.IssueData{
		Title:    title,
		Body:     template.HTML(html),
		SiteName: cfg.SEO.Title,
	})
	if err != nil {
		return nil, err
	}

	sender := s.newMailer(pkgmail.BuildMailConfig(cfg))
	for _, sub := range subscribers {
		if err := subscription.ValidateEmail(sub.Email); err != nil {
			iss.Skipped++
			s.log.Warn("skipping subscriber with invalid stored email",
				zap.String("subscriber_id", sub.ID),
			)
			continue
		}

		err := sender.Send(pkgmail.Message{
			To:      []string{sub.Email},
			Subject: title,
			HTML:    body,
			Text:    content,
		})
		if err != nil {
			iss.Failed++
			s.log.Error("failed to deliver issue",
				zap.String("issue_id", iss.ID),
				zap.String("subscriber_id", sub.ID),
				zap.Error(err),
			)
			continue
		}
		iss.Delivered++
	}

	err = s.db.Model(&models.NewsletterIssueModel{}).
		Where("id = ?", iss.ID).
		Updates(map[string]interface{}{
			"delivered": iss.Delivered,
			"failed":    iss.Failed,
			"skipped":   iss.Skipped,
		}).Error
	if err != nil {
		return nil, err
	}

	return &iss, nil
}

// Get returns a single issue by id, or (nil, nil) when it does not exist.
func (s *Service) Get(id string) (*models.NewsletterIssueModel, error) {
	var iss models.NewsletterIssueModel
	if err := s.db.First(&iss, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &iss, nil
}
