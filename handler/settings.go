package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fredoxntz/store-automation/service"
)

type SettingsHandler struct {
	openai *service.OpenAIService
}

func NewSettingsHandler(openai *service.OpenAIService) *SettingsHandler {
	return &SettingsHandler{openai: openai}
}

type aiTestRequest struct {
	Message string `json:"message" binding:"required"`
}

// TestAI sends a lightweight ping to the completion API so the operator
// can verify the stored credential before running a date normalization.
func (h *SettingsHandler) TestAI(c *gin.Context) {
	var req aiTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	reply, err := h.openai.Ping(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "API 오류: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": reply,
	})
}
