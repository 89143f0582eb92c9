package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/service"
)

type OtpController struct {
	Service *service.OtpService
}

func NewOtpController(s *service.OtpService) *OtpController {
	return &OtpController{Service: s}
}

// POST /otp/send — No requiere token
func (ctl *OtpController) SendCode(c *gin.Context) {
	var req dto.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Service.SendCode(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /otp/verify — el fallo de negocio viaja como flag con 200, no como
// error HTTP; solo los problemas de infraestructura dan 500.
func (ctl *OtpController) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.Service.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if errors.Is(err, service.ErrInvalidCode) {
		c.JSON(http.StatusOK, dto.VerifyCodeResponse{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.VerifyCodeResponse{Success: true})
}

// GET /otp/verified?email=...
func (ctl *OtpController) IsEmailVerified(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	verified, err := ctl.Service.IsEmailVerified(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": verified})
}
