package handler

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fungo/internal/metrics"
	"github.com/fungo/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger 为每个请求分配 request id 并用 zap 记录访问日志
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		started := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// AuthRequired 未登录时跳转到登录页，并带上原始地址
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.currentUser(c); !ok {
			c.Redirect(http.StatusFound, "/accounts/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// TrackVisits 在每次页面访问时更新会话中的访问计数
func (a *API) TrackVisits() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		state := service.VisitState{}
		if visits, ok := session.Get(sessionKeyVisits).(int); ok {
			state.Visits = visits
		}
		if raw, ok := session.Get(sessionKeyLastVisit).(string); ok {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				state.LastVisit = parsed
			}
		}

		next, transition, changed := service.TrackVisit(state, a.now())
		metrics.ObserveVisit(transition)

		if changed {
			session.Set(sessionKeyVisits, next.Visits)
			session.Set(sessionKeyLastVisit, next.LastVisit.Format(time.RFC3339Nano))
			if err := session.Save(); err != nil {
				c.Error(err)
				a.log.Warn("save visit session", zap.Error(err))
			}
		}

		c.Set(visitsContextKey, next.Visits)
		c.Next()
	}
}

// LoginRateLimit 按客户端 IP 限制登录尝试次数
func LoginRateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 10
	}
	limiters := &ipLimiters{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		entries: make(map[string]*ipLimiter),
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if !limiters.allow(c.ClientIP(), time.Now()) {
			c.String(http.StatusTooManyRequests, "Too many login attempts, please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*ipLimiter
}

const limiterIdleTTL = 10 * time.Minute

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.entries, key)
		}
	}

	entry, ok := l.entries[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}
