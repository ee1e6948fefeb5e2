// internal/handlers/tea.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laihecha/tea-api/internal/reco"
	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

const defaultPublicPageSize = 10

type TeaHandler struct {
	teaService *services.TeaService
}

func NewTeaHandler(teaService *services.TeaService) *TeaHandler {
	return &TeaHandler{teaService: teaService}
}

// GET /api/teas
func (h *TeaHandler) ListTeas(c *gin.Context) {
	params := utils.GetPaginationParams(c, defaultPublicPageSize)

	query := reco.SelectionQuery{
		Category:   c.Query("category"),
		AnonUserID: c.Query("anon_user_id"),
		ExcludeIDs: reco.ParseIDList(c.Query("exclude_ids")),
		IncludeIDs: reco.ParseIDList(c.Query("tea_ids")),
		Page:       params.Page,
		PageSize:   params.PageSize,
	}

	teas, total, err := h.teaService.ListPublic(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(teas, total, params)
	utils.SetPaginationHeaders(c, result)
	c.JSON(http.StatusOK, result)
}

// GET /api/teas/:id
func (h *TeaHandler) GetTea(c *gin.Context) {
	id, ok := teaIDParam(c)
	if !ok {
		return
	}

	tea, err := h.teaService.GetPublic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tea)
}
