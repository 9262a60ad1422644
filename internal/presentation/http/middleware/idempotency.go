package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/domain/entity"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/logger"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the key cache
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyRequired requires an Idempotency-Key header on POST requests.
// The key is claimed before the handler runs, so concurrent retries cannot
// both create a bill or receipt. A key already used by the same shop replays
// the stored response. Only 2xx responses are kept: a rejected payment
// releases the key so it can be corrected and retried.
func IdempotencyRequired(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}
		if len(idempotencyKey) > 255 {
			response.BadRequest(c, "Idempotency-Key header is too long")
			c.Abort()
			return
		}

		shopID := GetShopID(c)
		if shopID == uuid.Nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		endpoint := c.Request.Method + " " + c.FullPath()

		claimed, err := cfg.Repo.Claim(ctx, &entity.IdempotencyKey{
			Key:          idempotencyKey,
			ShopID:       shopID,
			UserID:       GetUserID(c),
			Endpoint:     endpoint,
			ResponseCode: entity.IdempotencyPending,
			ExpiresAt:    time.Now().Add(ttl),
		})
		if err != nil {
			log.Error("Failed to claim idempotency key", zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if !claimed {
			replayIdempotent(c, cfg.Repo, idempotencyKey, endpoint)
			c.Abort()
			return
		}

		// The claim must not outlive a failed or panicking request.
		completed := false
		defer func() {
			if completed {
				return
			}
			if err := cfg.Repo.Release(context.WithoutCancel(ctx), idempotencyKey); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("key", idempotencyKey),
					zap.Error(err),
				)
			}
		}()

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		if err := cfg.Repo.Complete(context.WithoutCancel(ctx), idempotencyKey, status, blw.body.String()); err != nil {
			log.Warn("Failed to store idempotency key",
				zap.String("key", idempotencyKey),
				zap.Error(err),
			)
			return
		}
		completed = true
	}
}

// replayIdempotent answers a request whose key is already held by the shop
func replayIdempotent(c *gin.Context, repo repository.IdempotencyRepository, key, endpoint string) {
	existing, err := repo.GetByKey(c.Request.Context(), key)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to check idempotency key", zap.Error(err))
		response.InternalServerError(c, "Failed to check idempotency key")
		return
	}

	switch {
	case existing == nil:
		// Released by its holder between the claim and this lookup.
		c.Header("Retry-After", "1")
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
	case existing.IsExpired():
		response.ErrorWithCode(c, http.StatusConflict, "Idempotency-Key has expired, use a new key")
	case existing.Endpoint != endpoint:
		response.ErrorWithCode(c, http.StatusConflict, "Idempotency-Key was already used for "+existing.Endpoint)
	case existing.IsPending():
		c.Header("Retry-After", "1")
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
	default:
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	}
}
