package app

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"codecounselor/internal/metrics"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// requestID assigns every request an id, reusing one supplied by the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(elapsed.Seconds())

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   elapsed.String(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(HeaderRequestID),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("http.request")
			return
		}
		entry.Info("http.request")
	}
}

// ipLimiter hands out one token bucket per client address.
type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	window   time.Duration
	visitors map[string]*visitor
	idle     time.Duration
	lastScan time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPLimiter allows perWindow sessions per client within window. A
// non-positive perWindow disables limiting and yields nil.
func newIPLimiter(perWindow int, window time.Duration) *ipLimiter {
	if perWindow <= 0 {
		return nil
	}
	return &ipLimiter{
		limit:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
		window:   window,
		visitors: make(map[string]*visitor),
		idle:     3 * window,
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastScan) > l.idle {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, key)
			}
		}
		l.lastScan = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// admit reports whether the client may start another upstream session. When
// it may not, the 429 response has already been written.
func (l *ipLimiter) admit(c *gin.Context) bool {
	if l == nil || l.allow(c.ClientIP(), time.Now()) {
		return true
	}

	retryAfter := int(l.window.Seconds())
	metrics.ChatRejections.WithLabelValues("rate_limited").Inc()
	log.WithField("client_ip", c.ClientIP()).Warn("rate_limit.exceeded")
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"detail":      "Rate limit exceeded",
		"retry_after": retryAfter,
	})
	return false
}
