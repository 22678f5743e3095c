package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingHandler handles billing reconciliation HTTP requests
type BillingHandler struct {
	billingService services.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService services.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// Reconcile handles POST /subscribers/:id/reconcile?force=true
func (h *BillingHandler) Reconcile(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	result, err := h.billingService.Reconcile(c.Request.Context(), id, force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSubscriber handles GET /subscribers/:id
func (h *BillingHandler) GetSubscriber(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	subscriber, err := h.billingService.GetSubscriber(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}
