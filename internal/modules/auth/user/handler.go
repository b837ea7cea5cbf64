package user

import (
	"errors"

	"github.com/Till769/zero2prod/internal/middleware"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/Till769/zero2prod/internal/pkg/response"
	sessionpkg "github.com/Till769/zero2prod/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	svc    *Service
	cfgSvc *appconfigs.Service
}

func NewHandler(svc *Service, cfgSvc *appconfigs.Service) *Handler {
	return &Handler{svc: svc, cfgSvc: cfgSvc}
}

// RegisterRoutes mounts the owner auth surface under /auth. limitMW rate
// limits the login endpoint and may be nil when redis is not available.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, limitMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	if limitMW != nil {
		a.POST("/login", limitMW, h.login)
	} else {
		a.POST("/login", h.login)
	}
	a.POST("/register", h.register)

	authed := a.Group("", authMW)
	authed.GET("/me", h.me)
	authed.PATCH("/me", h.updateProfile)
	authed.PATCH("/password", h.changePassword)
	authed.POST("/logout", h.logout)

	authed.GET("/sessions", h.listSessions)
	authed.DELETE("/sessions", h.revokeOtherSessions)
	authed.DELETE("/sessions/:id", h.revokeSession)

	authed.GET("/tokens", h.listTokens)
	authed.POST("/tokens", h.createToken)
	authed.DELETE("/tokens/:id", h.deleteToken)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if h.cfgSvc != nil {
		cfg, err := h.cfgSvc.Get()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if cfg.AuthSecurity.DisablePasswordLogin {
			response.BadRequest(c, "password login is disabled")
			return
		}
	}

	token, u, err := h.svc.Login(dto.Username, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		// One generic reason for both failure modes, so the response does
		// not reveal whether the username exists.
		if errors.Is(err, errUserNotFound) || errors.Is(err, errWrongPassword) {
			response.ForbiddenMsg(c, "invalid username or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, errOwnerExists) {
			response.BadRequest(c, "owner is already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(u))
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		if errors.Is(err, errWrongPassword) {
			response.BadRequest(c, "wrong password")
			return
		}
		if errors.Is(err, errPasswordSameAsOld) {
			response.UnprocessableEntity(c, "new password must differ from the old one")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) logout(c *gin.Context) {
	if sid := middleware.CurrentSessionID(c); sid != "" {
		if err := sessionpkg.Revoke(h.svc.db, middleware.CurrentUserID(c), sid); err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			response.InternalError(c, err)
			return
		}
	}
	response.NoContent(c)
}

func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	currentSID := middleware.CurrentSessionID(c)

	sessions, err := sessionpkg.ListActive(h.svc.db, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	data := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		data = append(data, sessionResponse{
			ID:      s.ID,
			UA:      s.UA,
			IP:      s.IP,
			Date:    s.UpdatedAt,
			Current: s.ID == currentSID,
		})
	}
	response.OK(c, gin.H{"data": data})
}

func (h *Handler) revokeSession(c *gin.Context) {
	err := sessionpkg.Revoke(h.svc.db, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "session not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) revokeOtherSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := sessionpkg.RevokeAllExcept(h.svc.db, userID, middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listTokens(c *gin.Context) {
	tokens, err := h.svc.ListTokens(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	data := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		data = append(data, toTokenResponse(&t))
	}
	response.OK(c, gin.H{"data": data})
}

func (h *Handler) createToken(c *gin.Context) {
	var dto CreateTokenDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.CreateToken(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, toTokenResponse(t))
}

func (h *Handler) deleteToken(c *gin.Context) {
	err := h.svc.DeleteToken(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "token not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
