package stubserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"soin-client/internal/models"
	"soin-client/pkg/utils"
)

const userKey = "soin.user"

// requireAuth validates the bearer token and loads the account into the
// request context. Looking the user up per request means approval
// changes take effect without re-login.
func requireAuth(secret string, store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortDetail(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortDetail(c, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
			return
		}

		token, err := utils.ValidateToken(parts[1], secret)
		if err != nil || !token.Valid {
			abortDetail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, ok := store.UserByID(utils.TokenUserID(token))
		if !ok {
			abortDetail(c, http.StatusUnauthorized, "Unknown account")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// requireRole restricts a route group to the given roles.
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		abortDetail(c, http.StatusForbidden, "Access denied")
	}
}

func currentUser(c *gin.Context) *User {
	val, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, _ := val.(*User)
	return user
}

func abortDetail(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, gin.H{"detail": detail})
}

// ipRateLimiter keeps one limiter per client IP.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	l := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		b:        b,
	}
	go l.cleanup()
	return l
}

func (l *ipRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, exists := l.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(l.r, l.b)
		l.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup drops IPs idle for over 3 minutes.
func (l *ipRateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, v := range l.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

// rateLimit throttles each client to 5 rps with a burst of 10, matching
// the client's own outbound limiter.
func rateLimit() gin.HandlerFunc {
	limiter := newIPRateLimiter(5, 10)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			abortDetail(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
