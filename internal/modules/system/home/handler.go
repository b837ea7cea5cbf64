package home

import (
	"bytes"
	"html/template"
	"net/http"

	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/Till769/zero2prod/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler serves the public landing page with the subscription form.
type Handler struct {
	cfgSvc *appconfigs.Service
}

func NewHandler(cfgSvc *appconfigs.Service) *Handler {
	return &Handler{cfgSvc: cfgSvc}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.index)
}

type pageData struct {
	Title       string
	Description string
}

var homeTmpl = template.Must(template.New("home").Parse(homeTpl))

func (h *Handler) index(c *gin.Context) {
	data := pageData{
		Title:       "Newsletter",
		Description: "Sign up to get every issue in your inbox.",
	}
	if h.cfgSvc != nil {
		cfg, err := h.cfgSvc.Get()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if cfg.SEO.Title != "" {
			data.Title = cfg.SEO.Title
		}
		if cfg.SEO.Description != "" {
			data.Description = cfg.SEO.Description
		}
	}

	var buf bytes.Buffer
	if err := homeTmpl.Execute(&buf, data); err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

const homeTpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<meta name="description" content="{{.Description}}" />
<title>{{.Title}}</title>
</head>
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:40px auto;background:#fff;border-radius:8px;padding:32px">
  <h1 style="color:#333">{{.Title}}</h1>
  <p style="color:#555;line-height:1.6">{{.Description}}</p>
  <form method="post" action="/subscriptions" style="margin-top:24px">
    <label for="name" style="display:block;color:#333;margin-bottom:4px">Name</label>
    <input id="name" type="text" name="name" placeholder="Your name" required
           style="width:100%;box-sizing:border-box;padding:8px;margin-bottom:12px;border:1px solid #ddd;border-radius:4px" />
    <label for="email" style="display:block;color:#333;margin-bottom:4px">Email</label>
    <input id="email" type="email" name="email" placeholder="you@example.com" required
           style="width:100%;box-sizing:border-box;padding:8px;margin-bottom:16px;border:1px solid #ddd;border-radius:4px" />
    <button type="submit"
            style="background:#4f46e5;color:#fff;padding:10px 20px;border:none;border-radius:4px;cursor:pointer">Subscribe</button>
  </form>
</div>
</body>
</html>`
