package controllers

import (
	"net/http"
	"strconv"

	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/Arpita030/deals-App/backend/services/deal-service/services"
	"github.com/gin-gonic/gin"
)

// DealController handles HTTP requests for the deal catalogue.
type DealController struct {
	dealService services.DealService
}

func NewDealController(dealService services.DealService) *DealController {
	return &DealController{dealService: dealService}
}

// ListDeals handles GET /deals/all and GET /deals/admin/all.
func (dc *DealController) ListDeals(ctx *gin.Context) {
	deals, err := dc.dealService.ListDeals(ctx.Request.Context())
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deals)
}

// ListActiveDeals handles GET /deals/active.
func (dc *DealController) ListActiveDeals(ctx *gin.Context) {
	deals, err := dc.dealService.ListActiveDeals(ctx.Request.Context())
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deals)
}

// ListDealsByCategory handles GET /deals/category/:category.
func (dc *DealController) ListDealsByCategory(ctx *gin.Context) {
	deals, err := dc.dealService.ListDealsByCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deals)
}

// GetDeal handles GET /deals/:id.
func (dc *DealController) GetDeal(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	deal, err := dc.dealService.GetDeal(ctx.Request.Context(), id)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deal)
}

// CreateDeal handles POST /deals (admin only).
func (dc *DealController) CreateDeal(ctx *gin.Context) {
	var req models.DealRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(ctx, apperrors.BadRequest(err.Error()))
		return
	}

	deal, err := dc.dealService.CreateDeal(ctx.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deal)
}

// UpdateDeal handles PUT /deals/:id (admin only).
func (dc *DealController) UpdateDeal(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req models.DealRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(ctx, apperrors.BadRequest(err.Error()))
		return
	}

	deal, err := dc.dealService.UpdateDeal(ctx.Request.Context(), id, &req)
	if err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deal)
}

// DeleteDeal handles DELETE /deals/:id (admin only).
func (dc *DealController) DeleteDeal(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := dc.dealService.DeleteDeal(ctx.Request.Context(), id); err != nil {
		apperrors.Respond(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Deal deleted"})
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apperrors.Respond(ctx, apperrors.BadRequest("Invalid deal id"))
		return 0, false
	}
	return id, true
}
