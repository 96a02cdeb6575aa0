package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/payment-service/models"
	"github.com/Arpita030/deals-App/backend/services/payment-service/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments services.PaymentService
}

func NewPaymentController(payments services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// Checkout handles POST /payments/checkout.
func (pc *PaymentController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.BadRequest(err.Error()))
		return
	}
	// Only admins may record a payment on behalf of another user.
	if req.UserEmail == "" || auth.Role(c) != auth.RoleAdmin {
		req.UserEmail = auth.Email(c)
	}

	txn, err := pc.payments.Checkout(c.Request.Context(), req, auth.Bearer(c))
	if err != nil {
		apperrors.Respond(c, toHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction successful! ID: " + txn.TransactionID,
		"transaction": txn,
	})
}

// UserTransactions handles GET /payments/user/transactions.
func (pc *PaymentController) UserTransactions(c *gin.Context) {
	txns, err := pc.payments.UserTransactions(c.Request.Context(), auth.Email(c))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, txns)
}

// AllTransactions handles GET /payments/admin/transactions.
func (pc *PaymentController) AllTransactions(c *gin.Context) {
	txns, err := pc.payments.AllTransactions(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, txns)
}

func toHTTPError(err error) *apperrors.Error {
	switch {
	case errors.Is(err, services.ErrMissingNonce):
		return apperrors.New(http.StatusBadRequest, "Missing payment method nonce", err)
	case errors.Is(err, services.ErrInvalidAmount):
		return apperrors.New(http.StatusBadRequest, "Invalid amount", err)
	case errors.Is(err, services.ErrDealNotFound):
		return apperrors.New(http.StatusNotFound, "Deal not found", err)
	case errors.Is(err, services.ErrDealInactive):
		return apperrors.New(http.StatusUnprocessableEntity, "Deal is inactive", err)
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return apperrors.New(http.StatusBadGateway, "Deal service unavailable", err)
	case errors.Is(err, services.ErrPaymentDeclined):
		return apperrors.New(http.StatusPaymentRequired, "Transaction failed: "+strings.TrimPrefix(err.Error(), services.ErrPaymentDeclined.Error()+": "), err)
	case errors.Is(err, services.ErrPersistenceFailure), errors.Is(err, services.ErrPublishFailure):
		return apperrors.New(http.StatusInternalServerError, "Failed to record transaction", err)
	default:
		return apperrors.Internal(err)
	}
}
