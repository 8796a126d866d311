package stub

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// FaultInjector fails the first N requests of every route with a fixed
// status, so client retry behavior can be watched against a live server.
// A zero N disables injection.
type FaultInjector struct {
	mu     sync.Mutex
	seen   map[string]int
	count  int
	status int
}

// NewFaultInjector creates an injector failing the first count requests per
// route with the given status.
func NewFaultInjector(count, status int) *FaultInjector {
	return &FaultInjector{
		seen:   make(map[string]int),
		count:  count,
		status: status,
	}
}

// Middleware returns the gin middleware applying the injection.
func (f *FaultInjector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if f.count <= 0 {
			c.Next()
			return
		}
		key := c.Request.Method + " " + c.FullPath()

		f.mu.Lock()
		inject := f.seen[key] < f.count
		if inject {
			f.seen[key]++
		}
		f.mu.Unlock()

		if inject {
			c.AbortWithStatusJSON(f.status, gin.H{"message": "injected fault"})
			return
		}
		c.Next()
	}
}
