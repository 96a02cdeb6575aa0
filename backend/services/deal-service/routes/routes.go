package routes

import (
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/deal-service/controllers"
	"github.com/gin-gonic/gin"
)

// RegisterDealRoutes sets up all deal routes. Every route needs a valid token.
func RegisterDealRoutes(r *gin.Engine, dc *controllers.DealController) {
	deals := r.Group("/deals")
	deals.Use(auth.RequireAuth())

	deals.GET("/all", dc.ListDeals)
	deals.GET("/active", dc.ListActiveDeals)
	deals.GET("/category/:category", dc.ListDealsByCategory)
	deals.GET("/:id", dc.GetDeal)

	admin := deals.Group("")
	admin.Use(auth.RequireRole(auth.RoleAdmin))
	admin.GET("/admin/all", dc.ListDeals)
	admin.POST("", dc.CreateDeal)
	admin.PUT("/:id", dc.UpdateDeal)
	admin.DELETE("/:id", dc.DeleteDeal)
}
