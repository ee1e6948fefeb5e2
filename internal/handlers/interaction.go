// internal/handlers/interaction.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

type InteractionHandler struct {
	interactionService *services.InteractionService
}

func NewInteractionHandler(interactionService *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

// POST /api/events
func (h *InteractionHandler) RecordEvent(c *gin.Context) {
	var req services.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.interactionService.RecordEvent(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	utils.OKResponse(c, nil)
}

// POST /api/feedback
func (h *InteractionHandler) SubmitFeedback(c *gin.Context) {
	var req services.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.interactionService.SubmitFeedback(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Applied {
		utils.OKResponse(c, gin.H{"dedup": true})
		return
	}
	utils.OKResponse(c, nil)
}

// POST /api/feedback/message
func (h *InteractionHandler) SubmitMessage(c *gin.Context) {
	var req services.MessageRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.interactionService.SubmitMessage(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	utils.OKResponse(c, nil)
}
