package routes

import (
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/notification-service/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, controller *controllers.NotificationController) {
	admin := router.Group("/notifications", auth.RequireAuth(), auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/log", controller.GetNotificationLogs)
	}
}
