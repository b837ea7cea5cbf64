package home

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Till769/zero2prod/internal/models"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, *appconfigs.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.OptionModel{}))

	cfgSvc := appconfigs.NewService(db)
	r := gin.New()
	NewHandler(cfgSvc).RegisterRoutes(r)
	return r, cfgSvc
}

func get(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHomePage(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, `action="/subscriptions"`)
	assert.Contains(t, body, `name="name"`)
	assert.Contains(t, body, `name="email"`)
}

func TestHomePageUsesRuntimeSEOSettings(t *testing.T) {
	r, cfgSvc := newTestRouter(t)

	_, err := cfgSvc.Patch(map[string]json.RawMessage{
		"seo": json.RawMessage(`{"title":"Dispatches","description":"Weekly notes on building things."}`),
	})
	require.NoError(t, err)

	w := get(t, r)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "<title>Dispatches</title>")
	assert.Contains(t, body, "Weekly notes on building things.")
}

func TestHomePageWithoutConfigService(t *testing.T) {
	r := gin.New()
	NewHandler(nil).RegisterRoutes(r)

	w := get(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Newsletter</title>")
}
