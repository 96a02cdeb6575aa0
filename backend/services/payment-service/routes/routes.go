package routes

import (
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/payment-service/controllers"
	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	payments := r.Group("/payments")
	payments.Use(auth.RequireAuth())
	payments.POST("/checkout", pc.Checkout)
	payments.GET("/user/transactions", pc.UserTransactions)

	admin := payments.Group("/admin")
	admin.Use(auth.RequireRole(auth.RoleAdmin))
	admin.GET("/transactions", pc.AllTransactions)
}
