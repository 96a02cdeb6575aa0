package routes

import (
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/user-service/controllers"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes mounts /auth (rate limited by authLimiter) and /users.
func RegisterUserRoutes(r *gin.Engine, uc *controllers.UserController, authLimiter gin.HandlerFunc) {
	authRoutes := r.Group("/auth")
	if authLimiter != nil {
		authRoutes.Use(authLimiter)
	}
	authRoutes.POST("/register", uc.Register)
	authRoutes.POST("/login", uc.Login)

	users := r.Group("/users")
	users.Use(auth.RequireAuth())
	users.GET("/profile", uc.GetProfile)
	users.GET("/admin/all", auth.RequireRole(auth.RoleAdmin), uc.ListUsers)
}
