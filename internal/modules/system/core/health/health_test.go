package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Till769/zero2prod/internal/models"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/Till769/zero2prod/internal/pkg/cron"
	"github.com/Till769/zero2prod/internal/pkg/nativelog"
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

type healthFixture struct {
	router *gin.Engine
	db     *gorm.DB
	sched  *cron.Scheduler
	cfgSvc *appconfigs.Service
}

func newFixture(t *testing.T) *healthFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.OptionModel{}))

	f := &healthFixture{
		db:     db,
		sched:  cron.New(),
		cfgSvc: appconfigs.NewService(db),
	}

	f.router = gin.New()
	passAuth := func(c *gin.Context) { c.Next() }
	RegisterRoutes(f.router.Group(""), db, f.sched, f.cfgSvc, passAuth)
	return f
}

func (f *healthFixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/health_check")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"database":true`)
}

func TestHealthCheckDegradedWhenDatabaseDown(t *testing.T) {
	f := newFixture(t)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := f.do(http.MethodGet, "/health_check")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"database":false`)
}

func TestJobList(t *testing.T) {
	f := newFixture(t)
	f.sched.Register(cron.Job{
		Name:        "heartbeat",
		Description: "Test job",
		Interval:    time.Hour,
		Fn:          func(ctx context.Context) error { return nil },
	})

	w := f.do(http.MethodGet, "/admin/health/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"heartbeat"`)
	assert.Contains(t, w.Body.String(), `"idle"`)
}

func TestJobDetailAndRun(t *testing.T) {
	f := newFixture(t)

	var runs atomic.Int32
	f.sched.Register(cron.Job{
		Name:     "heartbeat",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	w := f.do(http.MethodGet, "/admin/health/jobs/heartbeat")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status"`)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/admin/health/jobs/nothing").Code)

	w = f.do(http.MethodPost, "/admin/health/jobs/heartbeat/run")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "job triggered")

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/admin/health/jobs/nothing/run").Code)
}

func TestEmailTestRequiresMailEnabled(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/admin/health/email/test")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "mail is not enabled")
}

func TestEmailTestRequiresOwnerAddress(t *testing.T) {
	f := newFixture(t)
	_, err := f.cfgSvc.Patch(map[string]json.RawMessage{
		"mail_options": json.RawMessage(`{"enable":true}`),
	})
	require.NoError(t, err)

	w := f.do(http.MethodPost, "/admin/health/email/test")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "owner email not set")
}

func TestLogListAndDownload(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(nativelog.EnvLogDir, dir)
	f := newFixture(t)

	old := filepath.Join(dir, "stdout_1-1-20.log")
	require.NoError(t, os.WriteFile(old, []byte("old entry\n"), 0o644))
	today := filepath.Join(dir, nativelog.TodayFilename(time.Now()))
	require.NoError(t, os.WriteFile(today, []byte("fresh entry\n"), 0o644))

	w := f.do(http.MethodGet, "/admin/health/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stdout_1-1-20.log")
	assert.Contains(t, w.Body.String(), nativelog.TodayFilename(time.Now()))
	assert.Contains(t, w.Body.String(), `"size"`)

	w = f.do(http.MethodGet, "/admin/health/logs/stdout_1-1-20.log")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old entry\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/admin/health/logs/none.log").Code)
}

func TestLogListEmptyDirIsFine(t *testing.T) {
	t.Setenv(nativelog.EnvLogDir, filepath.Join(t.TempDir(), "missing"))
	f := newFixture(t)

	w := f.do(http.MethodGet, "/admin/health/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestLogDelete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(nativelog.EnvLogDir, dir)
	f := newFixture(t)

	old := filepath.Join(dir, "stdout_1-1-20.log")
	require.NoError(t, os.WriteFile(old, []byte("old entry\n"), 0o644))
	today := filepath.Join(dir, nativelog.TodayFilename(time.Now()))
	require.NoError(t, os.WriteFile(today, []byte("fresh entry\n"), 0o644))

	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/admin/health/logs/stdout_1-1-20.log").Code)
	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))

	// Today's file is truncated, not removed, since the logger keeps writing to it.
	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/admin/health/logs/"+nativelog.TodayFilename(time.Now())).Code)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", formatByteSize(512))
	assert.Equal(t, "2.00 KB", formatByteSize(2048))
	assert.Equal(t, "3.00 MB", formatByteSize(3<<20))
}
