package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type ipEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter limits requests per client IP within a time window. It fronts
// the export endpoint, where every request renders a full spreadsheet. The
// done channel stops the background cleanup goroutine on shutdown.
func RateLimiter(maxRequests int, window time.Duration, done <-chan struct{}) gin.HandlerFunc {
	var mu sync.Mutex
	entries := make(map[string]*ipEntry)

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				now := time.Now()
				for ip, entry := range entries {
					if now.After(entry.expiresAt) {
						delete(entries, ip)
					}
				}
				mu.Unlock()
			case <-done:
				return
			}
		}
	}()

	return func(c *gin.Context) {
		ip, _, _ := net.SplitHostPort(c.Request.RemoteAddr)
		if ip == "" {
			ip = c.Request.RemoteAddr
		}

		mu.Lock()
		entry, exists := entries[ip]
		now := time.Now()

		if !exists || now.After(entry.expiresAt) {
			entries[ip] = &ipEntry{count: 1, expiresAt: now.Add(window)}
			mu.Unlock()
			c.Next()
			return
		}

		entry.count++
		if entry.count > maxRequests {
			retryAfter := int(time.Until(entry.expiresAt).Seconds()) + 1
			mu.Unlock()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		mu.Unlock()
		c.Next()
	}
}
