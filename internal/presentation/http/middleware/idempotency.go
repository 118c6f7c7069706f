package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyLockTTL bounds how long a pending key blocks retries if its
	// request never finishes
	IdempotencyLockTTL = time.Minute
	// ReplayedHeader marks a response served from the idempotency store
	ReplayedHeader = "X-Idempotency-Replayed"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Now defaults to time.Now
	Now func() time.Time
}

func (c IdempotencyConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
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

// Idempotency replays the stored response when a POST is retried with the same key.
// The key is reserved before the handler runs, so a concurrent retry gets 409
// instead of running twice. Requests without a key pass through.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return idempotency(config, false)
}

// IdempotencyRequired is the stricter version used on checkout and payments
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return idempotency(config, true)
}

func idempotency(config IdempotencyConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		userID := GetUserID(c)
		if userID == uuid.Nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Failed to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		endpoint := c.Request.Method + " " + c.Request.URL.Path
		hash := requestHash(endpoint, body)

		ctx := c.Request.Context()
		existing, err := config.Repo.GetByKey(ctx, key, userID)
		if err != nil {
			log.Printf("idempotency lookup failed: %v", err)
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired(config.now()) {
			replay(c, existing, hash)
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    endpoint,
			RequestHash: hash,
			ExpiresAt:   config.now().Add(IdempotencyLockTTL),
		}
		if err := config.Repo.Reserve(ctx, ikey, config.now()); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				log.Printf("failed to reserve idempotency key: %v", err)
				response.InternalServerError(c, "Failed to reserve idempotency key")
				c.Abort()
				return
			}
			// lost the race to a concurrent request with the same key
			existing, err = config.Repo.GetByKey(ctx, key, userID)
			if err != nil || existing == nil {
				response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is in progress")
				c.Abort()
				return
			}
			replay(c, existing, hash)
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		// Failed or panicking attempts release the key so they may be retried
		stored := false
		defer func() {
			if stored {
				return
			}
			if err := config.Repo.Release(context.WithoutCancel(ctx), key, userID); err != nil {
				log.Printf("failed to release idempotency key: %v", err)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		ikey.ResponseCode = status
		ikey.ResponseBody = blw.body.String()
		ikey.ExpiresAt = config.now().Add(IdempotencyKeyTTL)
		if err := config.Repo.Complete(context.WithoutCancel(ctx), ikey); err != nil {
			log.Printf("failed to store idempotency key: %v", err)
			return
		}
		stored = true
	}
}

// replay answers from a live key: the stored response when it is complete and
// the request matches, otherwise an error.
func replay(c *gin.Context, existing *entity.IdempotencyKey, hash string) {
	switch {
	case existing.RequestHash != hash:
		response.ErrorWithCode(c, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request")
	case existing.IsPending():
		response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is in progress")
	default:
		c.Header(ReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	}
	c.Abort()
}

func requestHash(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
