package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	intconfig "cruisebooking/internal/config"
	"cruisebooking/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine

	servicesMu sync.RWMutex
	registry   Services
)

// Services is the set of domain services the handlers call. Handlers copy a
// service value and stamp it with the request id before use.
type Services struct {
	Itineraries services.ItineraryService
	Bookings    services.BookingService
	Payments    services.PaymentService
	Promotions  services.PromotionService
	Marketing   services.MarketingService
	Docs        services.DocsService
}

func SetServices(s Services) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	registry = s
}

func current() Services {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return registry
}

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "cruise booking backend running"})
}

func DBCheck(c *gin.Context) {
	if intconfig.DB == nil {
		c.JSON(http.StatusOK, gin.H{"message": "in-memory store", "driver": "memory"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	var count int
	if err := intconfig.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM itineraries").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "driver": intconfig.DB.DriverName(), "itineraries": count})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
