package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementHandler handles winner computation, verification and settlement
// HTTP requests
type SettlementHandler struct {
	settlementService services.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// ComputeWinners handles POST /draws/:id/winners/compute
func (h *SettlementHandler) ComputeWinners(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	winners, err := h.settlementService.ComputeWinners(c.Request.Context(), drawID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// GetWinnersByDrawID handles GET /draws/:id/winners
func (h *SettlementHandler) GetWinnersByDrawID(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	winners, err := h.settlementService.GetWinnersByDrawID(c.Request.Context(), drawID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// GetWinnersByStatus handles GET /winners/status/:status
func (h *SettlementHandler) GetWinnersByStatus(c *gin.Context) {
	status := models.VerificationStatus(strings.ToUpper(c.Param("status")))
	switch status {
	case models.VerificationPending, models.VerificationVerified, models.VerificationRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status (PENDING, VERIFIED or REJECTED)"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	winners, err := h.settlementService.GetWinnersByStatus(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// VerifyRequest is the payload for POST /winners/:id/verify
type VerifyRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// Verify handles POST /winners/:id/verify. The acting admin is taken from
// the JWT claims set by the auth middleware.
func (h *SettlementHandler) Verify(c *gin.Context) {
	winnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Decision != models.DecisionAccept && req.Decision != models.DecisionReject {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept or reject"})
		return
	}

	adminID := c.GetString("userID")
	if adminID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing admin identity"})
		return
	}

	winner, err := h.settlementService.Verify(c.Request.Context(), winnerID, req.Decision, adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// SettleRequest is the payload for POST /winners/:id/settle
type SettleRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
}

// Settle handles POST /winners/:id/settle
func (h *SettlementHandler) Settle(c *gin.Context) {
	winnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := h.settlementService.Settle(c.Request.Context(), winnerID, req.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// GetLedger handles GET /winners/:id/ledger
func (h *SettlementHandler) GetLedger(c *gin.Context) {
	winnerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	entries, err := h.settlementService.GetLedgerByWinnerID(c.Request.Context(), winnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
