package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alixefin/kryptic-sub000/internal/repository"
	"github.com/Alixefin/kryptic-sub000/internal/service"
)

type NotificationController struct {
	Service *service.NotificationService
}

func NewNotificationController(s *service.NotificationService) *NotificationController {
	return &NotificationController{Service: s}
}

// GET /notifications/mine — requiere token
func (ctl *NotificationController) GetMine(c *gin.Context) {
	userID := c.GetString("userID")
	out, err := ctl.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /notifications/:id/read
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if err := ctl.Service.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}

// GET /admin/notifications — admin only
func (ctl *NotificationController) GetAdmin(c *gin.Context) {
	out, err := ctl.Service.ListForAdmins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
