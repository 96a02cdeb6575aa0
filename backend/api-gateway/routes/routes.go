package routes

import (
	"github.com/Arpita030/deals-App/backend/api-gateway/proxy"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/gin-gonic/gin"
)

// Targets maps each downstream service to its forwarder.
type Targets struct {
	User         *proxy.Forwarder
	Deal         *proxy.Forwarder
	Payment      *proxy.Forwarder
	Cashback     *proxy.Forwarder
	Notification *proxy.Forwarder
}

// RegisterAllRoutes mounts the public auth endpoints and the JWT protected
// service prefixes. Role checks stay with the owning service. limit, when
// set, runs after authentication so callers are throttled per user.
func RegisterAllRoutes(r *gin.Engine, t Targets, limit gin.HandlerFunc) {
	// ===== PUBLIC ROUTES =====
	public := r.Group("/auth")
	if limit != nil {
		public.Use(limit)
	}
	public.POST("/register", t.User.Handle)
	public.POST("/login", t.User.Handle)

	// ===== PROTECTED ROUTES (JWT Required) =====
	protected := r.Group("/")
	protected.Use(auth.RequireAuth())
	if limit != nil {
		protected.Use(limit)
	}

	mount(protected, "/users", t.User)
	mount(protected, "/deals", t.Deal)
	mount(protected, "/payments", t.Payment)
	mount(protected, "/cashback", t.Cashback)
	mount(protected, "/notifications", t.Notification)
}

func mount(g *gin.RouterGroup, prefix string, f *proxy.Forwarder) {
	g.Any(prefix, f.Handle)
	g.Any(prefix+"/*any", f.Handle)
}
