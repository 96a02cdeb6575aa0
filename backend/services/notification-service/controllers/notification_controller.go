package controllers

import (
	"net/http"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/notification-service/models"
	"github.com/Arpita030/deals-App/backend/services/notification-service/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type NotificationController struct {
	service services.NotificationService
	logger  *zap.Logger
}

func NewNotificationController(svc services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{service: svc, logger: logger}
}

type logQuery struct {
	Recipient string `form:"recipient" binding:"omitempty,email"`
	Status    string `form:"status" binding:"omitempty,oneof=sent failed"`
	Channel   string `form:"channel" binding:"omitempty,oneof=email"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1"`
}

func (q logQuery) filter() models.NotificationFilter {
	f := models.NotificationFilter{
		Recipient: q.Recipient,
		Status:    q.Status,
		Channel:   q.Channel,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if f.Page == 0 {
		f.Page = 1
	}
	switch {
	case f.PageSize == 0:
		f.PageSize = defaultPageSize
	case f.PageSize > maxPageSize:
		f.PageSize = maxPageSize
	}
	return f
}

// GetNotificationLogs handles GET /notifications/log.
func (nc *NotificationController) GetNotificationLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apperrors.Respond(c, apperrors.BadRequest("Invalid query: "+err.Error()))
		return
	}
	filter := q.filter()

	logs, total, err := nc.service.GetLogs(c.Request.Context(), filter)
	if err != nil {
		nc.logger.Error("failed to list notification logs",
			zap.String("requested_by", auth.Email(c)),
			zap.Error(err),
		)
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total":       total,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
		"total_pages": (total + int64(filter.PageSize) - 1) / int64(filter.PageSize),
	})
}
