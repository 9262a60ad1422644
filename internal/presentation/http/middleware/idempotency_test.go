package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	infraRepo "github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tailorbook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idempotencyFixture struct {
	router  *gin.Engine
	shopID  uuid.UUID
	created atomic.Int32
	status  atomic.Int32
	entered chan struct{}
	proceed chan struct{}
}

func newIdempotencyFixture(t *testing.T) *idempotencyFixture {
	t.Helper()

	f := &idempotencyFixture{shopID: uuid.New()}
	f.status.Store(http.StatusCreated)

	repo := infraRepo.NewIdempotencyRepository(testutil.NewDB(t))
	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(ContextShopID, f.shopID)
		c.Set(ContextUserID, uuid.New())
		c.Request = c.Request.WithContext(infraRepo.WithShop(c.Request.Context(), f.shopID))
		c.Next()
	})
	idempotent := IdempotencyRequired(IdempotencyConfig{Repo: repo})

	f.router.POST("/receipts", idempotent, func(c *gin.Context) {
		if f.entered != nil {
			f.entered <- struct{}{}
			<-f.proceed
		}
		n := f.created.Add(1)
		c.JSON(int(f.status.Load()), gin.H{"receipt_number": n})
	})
	f.router.POST("/bills", idempotent, func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"bill_number": 1})
	})
	return f
}

func (f *idempotencyFixture) post(path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set(IdempotencyKeyHeader, key)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	f := newIdempotencyFixture(t)
	key := uuid.NewString()

	first := f.post("/receipts", key)
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.post("/receipts", key)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), f.created.Load())
}

func TestIdempotency_ConcurrentRetryIsRefused(t *testing.T) {
	f := newIdempotencyFixture(t)
	f.entered = make(chan struct{})
	f.proceed = make(chan struct{})
	key := uuid.NewString()

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- f.post("/receipts", key) }()
	<-f.entered

	// The first request holds the key while its handler runs
	retry := f.post("/receipts", key)
	assert.Equal(t, http.StatusConflict, retry.Code)
	assert.Equal(t, "1", retry.Header().Get("Retry-After"))

	close(f.proceed)
	first := <-done
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, int32(1), f.created.Load())

	f.entered = nil
	again := f.post("/receipts", key)
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, "true", again.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, int32(1), f.created.Load())
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	f := newIdempotencyFixture(t)
	key := uuid.NewString()

	f.status.Store(http.StatusUnprocessableEntity)
	rejected := f.post("/receipts", key)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.Code)

	f.status.Store(http.StatusCreated)
	retried := f.post("/receipts", key)
	assert.Equal(t, http.StatusCreated, retried.Code)
	assert.Empty(t, retried.Header().Get(IdempotencyReplayedHeader))
	assert.Equal(t, int32(2), f.created.Load())
}

func TestIdempotency_KeyBoundToEndpoint(t *testing.T) {
	f := newIdempotencyFixture(t)
	key := uuid.NewString()

	require.Equal(t, http.StatusCreated, f.post("/bills", key).Code)

	w := f.post("/receipts", key)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "POST /bills")
	assert.Equal(t, int32(0), f.created.Load())
}

func TestIdempotency_RequiresKey(t *testing.T) {
	f := newIdempotencyFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/receipts", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), f.created.Load())
}
