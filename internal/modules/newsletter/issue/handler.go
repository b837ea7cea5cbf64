package issue

import (
	"github.com/Till769/zero2prod/internal/models"
	"github.com/Till769/zero2prod/internal/pkg/pagination"
	"github.com/Till769/zero2prod/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type PublishDTO struct {
	Title   string `json:"title"   binding:"required"`
	Content string `json:"content" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the admin newsletter routes. idemMW guards the
// publish endpoint against duplicate submissions and may be nil when redis
// is not available.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, idemMW gin.HandlerFunc) {
	g := rg.Group("/admin/newsletters", authMW)
	if idemMW != nil {
		g.POST("", idemMW, h.publish)
	} else {
		g.POST("", h.publish)
	}
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) publish(c *gin.Context) {
	var dto PublishDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	iss, err := h.svc.Publish(dto.Title, dto.Content)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":        iss.ID,
		"delivered": iss.Delivered,
		"failed":    iss.Failed,
		"skipped":   iss.Skipped,
	})
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	query := h.svc.db.Model(&models.NewsletterIssueModel{}).Order("created_at DESC")
	var issues []models.NewsletterIssueModel
	page, err := pagination.Paginate(query, q, &issues)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, issues, page)
}

func (h *Handler) get(c *gin.Context) {
	iss, err := h.svc.Get(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if iss == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, iss)
}
