package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newHealthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection so every gorm call sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", New(db, zap.NewNop().Sugar()).Check)
	return r, db
}

func probe(r *gin.Engine) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestCheck(t *testing.T) {
	t.Run("healthy database reports ok", func(t *testing.T) {
		r, _ := newHealthRouter(t)

		w, body := probe(r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["database"])
	})

	t.Run("closed database reports unhealthy", func(t *testing.T) {
		r, db := newHealthRouter(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		w, body := probe(r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", body.Status)
		assert.NotEqual(t, "ok", body.Checks["database"])
	})

	t.Run("concurrent probes all succeed", func(t *testing.T) {
		r, _ := newHealthRouter(t)

		codes := make(chan int, 8)
		for i := 0; i < 8; i++ {
			go func() {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
				codes <- w.Code
			}()
		}
		for i := 0; i < 8; i++ {
			assert.Equal(t, http.StatusOK, <-codes)
		}
	})

	t.Run("body is json", func(t *testing.T) {
		r, _ := newHealthRouter(t)

		w, _ := probe(r)

		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	})
}
