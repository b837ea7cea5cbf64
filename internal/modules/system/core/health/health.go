package health

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/Till769/zero2prod/internal/pkg/cron"
	pkgmail "github.com/Till769/zero2prod/internal/pkg/mail"
	"github.com/Till769/zero2prod/internal/pkg/nativelog"
	"github.com/Till769/zero2prod/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, sched *cron.Scheduler, cfgSvc *appconfigs.Service, authMW gin.HandlerFunc) {
	rg.GET("/health_check", func(c *gin.Context) {
		sqlDB, err := db.DB()
		dbOK := err == nil && sqlDB.Ping() == nil

		status := "ok"
		code := http.StatusOK
		if !dbOK {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbOK,
		})
	})

	adminHealth := rg.Group("/admin/health", authMW)

	jobGroup := adminHealth.Group("/jobs")
	{
		jobGroup.GET("", func(c *gin.Context) {
			response.OK(c, sched.List())
		})

		jobGroup.GET("/:name", func(c *gin.Context) {
			result, err := sched.GetTask(c.Param("name"))
			if err != nil {
				response.NotFoundMsg(c, err.Error())
				return
			}
			response.OK(c, result)
		})

		jobGroup.POST("/:name/run", func(c *gin.Context) {
			if err := sched.Run(c.Request.Context(), c.Param("name")); err != nil {
				response.NotFoundMsg(c, err.Error())
				return
			}
			response.OK(c, gin.H{"message": "job triggered"})
		})
	}

	adminHealth.POST("/email/test", func(c *gin.Context) {
		cfg, err := cfgSvc.Get()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !cfg.MailOptions.Enable {
			response.UnprocessableEntity(c, "mail is not enabled")
			return
		}

		var owner struct{ Mail string }
		db.Table("users").Select("mail").Scan(&owner)
		if owner.Mail == "" {
			response.UnprocessableEntity(c, "owner email not set")
			return
		}

		sender := pkgmail.New(pkgmail.BuildMailConfig(cfg))
		if err := sender.Send(pkgmail.Message{
			To:      []string{owner.Mail},
			Subject: "Newsletter email test",
			HTML:    "<h1>Email configuration works!</h1><p>If you received this message, the mail service is set up correctly.</p>",
		}); err != nil {
			response.UnprocessableEntity(c, err.Error())
			return
		}

		response.OK(c, gin.H{"ok": true})
	})

	logGroup := adminHealth.Group("/logs")
	{
		logGroup.GET("", func(c *gin.Context) {
			logDir := nativelog.ResolveDir()
			entries, err := os.ReadDir(logDir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					response.OK(c, []logItem{})
					return
				}
				response.BadRequest(c, "log dir not exists")
				return
			}

			items := make([]logItem, 0, len(entries))
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				items = append(items, logItem{
					Size:     formatByteSize(info.Size()),
					Filename: entry.Name(),
					Created:  info.ModTime().UnixMilli(),
				})
			}

			sort.Slice(items, func(i, j int) bool {
				return items[i].Created > items[j].Created
			})
			response.OK(c, items)
		})

		logGroup.GET("/:filename", func(c *gin.Context) {
			filename := filepath.Base(strings.TrimSpace(c.Param("filename")))
			if filename == "." || filename == string(filepath.Separator) {
				response.UnprocessableEntity(c, "filename must be string")
				return
			}

			logPath := filepath.Join(nativelog.ResolveDir(), filename)
			data, err := os.ReadFile(logPath)
			if err != nil {
				response.BadRequest(c, "log file not exists")
				return
			}

			c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
		})

		logGroup.DELETE("/:filename", func(c *gin.Context) {
			filename := filepath.Base(strings.TrimSpace(c.Param("filename")))
			if filename == "." || filename == string(filepath.Separator) {
				response.UnprocessableEntity(c, "filename must be string")
				return
			}

			logDir := nativelog.ResolveDir()
			targetPath := filepath.Join(logDir, filename)
			todayPath := filepath.Join(logDir, nativelog.TodayFilename(time.Now()))

			// The file backing today's logger stays open; truncate instead of unlink.
			if samePath(targetPath, todayPath) {
				if err := os.WriteFile(targetPath, []byte(""), 0o644); err != nil && !errors.Is(err, os.ErrNotExist) {
					response.InternalError(c, err)
					return
				}
			} else if err := os.Remove(targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				response.InternalError(c, err)
				return
			}

			response.NoContent(c)
		})
	}
}

func formatByteSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func samePath(a, b string) bool {
	left := filepath.Clean(a)
	right := filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(left, right)
	}
	return left == right
}
