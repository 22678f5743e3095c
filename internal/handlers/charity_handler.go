package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CharityHandler serves the charity reference data
type CharityHandler struct {
	charityRepo repositories.CharityRepository
}

// NewCharityHandler creates a new CharityHandler
func NewCharityHandler(charityRepo repositories.CharityRepository) *CharityHandler {
	return &CharityHandler{
		charityRepo: charityRepo,
	}
}

// GetCharities handles GET /charities
func (h *CharityHandler) GetCharities(c *gin.Context) {
	charities, err := h.charityRepo.FindActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charities)
}

// GetCharityByID handles GET /charities/:id
func (h *CharityHandler) GetCharityByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	charity, err := h.charityRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charity)
}
