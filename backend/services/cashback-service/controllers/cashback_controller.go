package controllers

import (
	"errors"
	"net/http"

	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/services"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/gin-gonic/gin"
)

type CashbackController struct {
	cashback services.CashbackService
}

func NewCashbackController(cashback services.CashbackService) *CashbackController {
	return &CashbackController{cashback: cashback}
}

// AddCashback handles POST /cashback/add (admin only).
func (cc *CashbackController) AddCashback(c *gin.Context) {
	var req models.AddCashbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest(err.Error()))
		return
	}

	rec, err := cc.cashback.AddCashback(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrMissingEmail) || errors.Is(err, services.ErrInvalidAmount) {
			apperrors.Respond(c, apperrors.BadRequest(err.Error()))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListCashbacks handles GET /cashback/user/:email.
func (cc *CashbackController) ListCashbacks(c *gin.Context) {
	views, err := cc.cashback.ListCashbacks(c.Request.Context(), c.Param("email"))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, views)
}

// TotalCashback handles GET /cashback/user/:email/total.
func (cc *CashbackController) TotalCashback(c *gin.Context) {
	email := c.Param("email")
	total, err := cc.cashback.TotalCashback(c.Request.Context(), email)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, models.CashbackSummary{UserEmail: email, TotalCashback: total})
}

// Summary handles GET /cashback/summary/:email.
func (cc *CashbackController) Summary(c *gin.Context) {
	summary, err := cc.cashback.Summary(c.Request.Context(), c.Param("email"))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Reconcile handles POST /cashback/admin/reconcile/:email.
func (cc *CashbackController) Reconcile(c *gin.Context) {
	summary, err := cc.cashback.Reconcile(c.Request.Context(), c.Param("email"))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}
