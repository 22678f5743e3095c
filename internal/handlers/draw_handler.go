package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawHandler handles draw lifecycle HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

// ScheduleDrawRequest is the payload for POST /draws
type ScheduleDrawRequest struct {
	Label           string             `json:"label" binding:"required"`
	PrizePool       int64              `json:"prize_pool" binding:"required"`
	Tiers           []models.PrizeTier `json:"tiers"`
	CharitySplitBps int32              `json:"charity_split_bps"`
}

// ScheduleDraw handles POST /draws
func (h *DrawHandler) ScheduleDraw(c *gin.Context) {
	var req ScheduleDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draw, err := h.drawService.ScheduleDraw(c.Request.Context(), req.Label, req.PrizePool, req.Tiers, req.CharitySplitBps)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// ExecuteDraw handles POST /draws/:id/execute
func (h *DrawHandler) ExecuteDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.ExecuteDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// PublishDraw handles POST /draws/:id/publish
func (h *DrawHandler) PublishDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.PublishDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// SubmitEntryRequest is the payload for POST /draws/:id/entries
type SubmitEntryRequest struct {
	SubscriberID string `json:"subscriber_id" binding:"required"`
	Numbers      []int  `json:"numbers" binding:"required"`
}

// SubmitEntry handles POST /draws/:id/entries
func (h *DrawHandler) SubmitEntry(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subscriberID, err := primitive.ObjectIDFromHex(req.SubscriberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscriber ID format"})
		return
	}

	entry, err := h.drawService.SubmitEntry(c.Request.Context(), drawID, subscriberID, req.Numbers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetDrawByID handles GET /draws/:id
func (h *DrawHandler) GetDrawByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	draw, err := h.drawService.GetDrawByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawByLabel handles GET /draws/label/:label
func (h *DrawHandler) GetDrawByLabel(c *gin.Context) {
	draw, err := h.drawService.GetDrawByLabel(c.Request.Context(), c.Param("label"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDraws handles GET /draws
func (h *DrawHandler) GetDraws(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	draws, err := h.drawService.GetDraws(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draws)
}
