package subscription

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Till769/zero2prod/internal/models"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	pkgmail "github.com/Till769/zero2prod/internal/pkg/mail"
	"github.com/Till769/zero2prod/internal/pkg/pagination"
	"github.com/Till769/zero2prod/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type SubscribeDTO struct {
	Name  string `form:"name"  binding:"required"`
	Email string `form:"email" binding:"required"`
}

type ConfirmQuery struct {
	SubscriptionToken string `form:"subscription_token" binding:"required"`
}

type Handler struct {
	svc    *Service
	cfgSvc *appconfigs.Service

	// newMailer builds the sender per request so runtime mail settings take
	// effect without a restart.
	newMailer func(cfg pkgmail.Config) pkgmail.EmailSender
}

func NewHandler(svc *Service, cfgSvc *appconfigs.Service) *Handler {
	return &Handler{
		svc:    svc,
		cfgSvc: cfgSvc,
		newMailer: func(cfg pkgmail.Config) pkgmail.EmailSender {
			return pkgmail.New(cfg)
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/subscriptions")
	g.POST("", h.subscribe)
	g.GET("/confirm", h.confirm)

	admin := rg.Group("/admin/subscribers", authMW)
	admin.GET("", h.list)
}

func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := ValidateName(dto.Name); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := ValidateEmail(dto.Email); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub, token, err := h.svc.Subscribe(dto.Name, dto.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	if err := h.sendConfirmationEmail(sub, token); err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "check your inbox for a confirmation link"})
}

func (h *Handler) confirm(c *gin.Context) {
	var q ConfirmQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !isWellFormedToken(q.SubscriptionToken) {
		response.Unauthorized(c)
		return
	}

	if err := h.svc.Confirm(q.SubscriptionToken); err != nil {
		if errors.Is(err, errUnknownToken) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "subscription confirmed"})
}

// list returns subscribers for the admin panel, newest first, optionally
// filtered by status.
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	query := h.svc.db.Model(&models.SubscriberModel{}).Order("created_at DESC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var subs []models.SubscriberModel
	page, err := pagination.Paginate(query, q, &subs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, page)
}

func (h *Handler) sendConfirmationEmail(sub *models.SubscriberModel, token string) error {
	cfg, err := h.cfgSvc.Get()
	if err != nil {
		return err
	}

	baseURL := firstNonEmpty(cfg.URL.ServerURL, cfg.URL.WebURL)
	link, err := buildConfirmationURL(baseURL, token)
	if err != nil {
		return err
	}

	html, text, err := pkgmail.RenderConfirmation(sub.Name, link)
	if err != nil {
		return err
	}

	sender := h.newMailer(pkgmail.BuildMailConfig(cfg))
	return sender.Send(pkgmail.Message{
		To:      []string{sub.Email},
		Subject: "Welcome!",
		HTML:    html,
		Text:    text,
	})
}

func buildConfirmationURL(baseURL, token string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("confirmation base url is not configured")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid confirmation base url")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/subscriptions/confirm"
	q := u.Query()
	q.Set("subscription_token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
