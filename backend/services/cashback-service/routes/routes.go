package routes

import (
	"strings"

	"github.com/Arpita030/deals-App/backend/services/cashback-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/gin-gonic/gin"
)

func RegisterCashbackRoutes(r *gin.Engine, cc *controllers.CashbackController) {
	cashback := r.Group("/cashback")
	cashback.Use(auth.RequireAuth())

	cashback.GET("/user/:email", selfOrAdmin(), cc.ListCashbacks)
	cashback.GET("/user/:email/total", selfOrAdmin(), cc.TotalCashback)
	cashback.GET("/summary/:email", selfOrAdmin(), cc.Summary)

	admin := cashback.Group("")
	admin.Use(auth.RequireRole(auth.RoleAdmin))
	admin.POST("/add", cc.AddCashback)
	admin.POST("/admin/reconcile/:email", cc.Reconcile)
}

// selfOrAdmin lets users read only their own cashback.
func selfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(auth.Role(c), auth.RoleAdmin) || strings.EqualFold(auth.Email(c), c.Param("email")) {
			c.Next()
			return
		}
		apperrors.Respond(c, apperrors.Forbidden("Access denied"))
	}
}
