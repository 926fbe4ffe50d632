package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/twokvolts/internal/http/middleware"
	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/service"
)

type registerRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	FullName        string `json:"full_name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	PersonalAccount string `json:"personal_account"`
}

type consumerResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Type            string `json:"type"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	PersonalAccount string `json:"personal_account"`
}

func toConsumerResponse(consumer *model.Consumer) consumerResponse {
	return consumerResponse{
		ID:              consumer.ID.String(),
		Email:           consumer.Email,
		FullName:        consumer.FullName,
		Type:            string(consumer.Type),
		Address:         consumer.Address,
		Phone:           consumer.Phone,
		PersonalAccount: consumer.PersonalAccount,
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.consumers.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		Type:            req.Type,
		Address:         req.Address,
		Phone:           req.Phone,
		PersonalAccount: req.PersonalAccount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":    result.Token,
		"consumer": toConsumerResponse(result.Consumer),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.consumers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    result.Token,
		"consumer": toConsumerResponse(result.Consumer),
	})
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	consumer, err := h.consumers.Get(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConsumerResponse(consumer))
}
