package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/kirinyoku/playpass/internal/repository/redis"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	idemLockTTL          = 60 * time.Second
	maxIdemKeyLen        = 128
)

// respondIdempotent runs fn once per (scope, user, Idempotency-Key). scope
// must name the target resource so one key cannot replay across resources.
// A repeated key replays the stored response; a key still in flight gets
// 409. Without a key or store fn simply runs.
func respondIdempotent(
	c *gin.Context,
	idem *redisrepo.IdempotencyStore,
	scope string,
	userID int64,
	status int,
	fn func() (any, error),
) {
	idemKey := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
	if len(idemKey) > maxIdemKeyLen {
		badRequest(c, "Idempotency-Key is too long")
		return
	}

	var storageKey string
	if idem != nil && idemKey != "" {
		storageKey = redisrepo.KeyIdem(scope, userID, idemKey)
		ctx := c.Request.Context()

		if payload, ok, _ := idem.GetResult(ctx, storageKey); ok {
			replay(c, idemKey, status, payload)
			return
		}

		locked, err := idem.AcquireLock(ctx, storageKey, idemLockTTL)
		if err != nil {
			respondErr(c, err)
			return
		}
		if !locked {
			if payload, ok, _ := idem.GetResult(ctx, storageKey); ok {
				replay(c, idemKey, status, payload)
				return
			}
			c.Header("Retry-After", "1")
			c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
			return
		}
	}

	resp, err := fn()
	if err != nil {
		if storageKey != "" {
			_ = idem.Release(c.Request.Context(), storageKey)
		}
		respondErr(c, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		respondErr(c, err)
		return
	}

	if storageKey != "" {
		_ = idem.SaveResult(c.Request.Context(), storageKey, string(b))
		c.Header(headerIdempotencyKey, idemKey)
	}

	c.Data(status, "application/json; charset=utf-8", b)
}

func replay(c *gin.Context, idemKey string, status int, payload string) {
	c.Header(headerIdempotencyKey, idemKey)
	c.Data(status, "application/json; charset=utf-8", []byte(payload))
}
