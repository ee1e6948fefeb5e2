// internal/handlers/admin.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/i18n"
	"github.com/laihecha/tea-api/internal/models"
	"github.com/laihecha/tea-api/internal/reco"
	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

const defaultAdminPageSize = 20

type AdminHandler struct {
	teaService       *services.TeaService
	storageService   *services.StorageService
	importService    *services.ImportService
	dashboardService *services.DashboardService
}

func NewAdminHandler(
	teaService *services.TeaService,
	storageService *services.StorageService,
	importService *services.ImportService,
	dashboardService *services.DashboardService,
) *AdminHandler {
	return &AdminHandler{
		teaService:       teaService,
		storageService:   storageService,
		importService:    importService,
		dashboardService: dashboardService,
	}
}

// GET /api/admin/teas
func (h *AdminHandler) ListTeas(c *gin.Context) {
	params := utils.GetPaginationParams(c, defaultAdminPageSize)
	if _, ok := params.Offset(); !ok {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationPagination), nil)
		return
	}

	filter := services.AdminTeaFilter{
		PaginationParams: params,
		Keyword:          c.Query("keyword"),
		Status:           c.Query("status"),
		Category:         c.Query("category"),
	}

	teas, total, err := h.teaService.AdminList(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(teas, total, params)
	utils.SetPaginationHeaders(c, result)
	c.JSON(http.StatusOK, result)
}

// POST /api/admin/teas
func (h *AdminHandler) CreateTea(c *gin.Context) {
	var req models.TeaBase
	if !bindTea(c, &req) {
		return
	}

	tea, err := h.teaService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tea)
}

// PUT /api/admin/teas/:id
func (h *AdminHandler) UpdateTea(c *gin.Context) {
	id, ok := teaIDParam(c)
	if !ok {
		return
	}

	var req models.TeaBase
	if !bindTea(c, &req) {
		return
	}

	tea, err := h.teaService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tea)
}

// DELETE /api/admin/teas/:id
func (h *AdminHandler) DeleteTea(c *gin.Context) {
	id, ok := teaIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.teaService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted.CoverShared {
		h.releaseCover(c.Request.Context(), deleted.Tea.CoverURL)
	}
	utils.OKResponse(c, nil)
}

// releaseCover removes an uploaded cover nobody references any more. Covers
// hosted elsewhere are left alone, and a failed removal only logs.
func (h *AdminHandler) releaseCover(ctx context.Context, coverURL string) {
	key, ok := h.storageService.KeyForURL(coverURL)
	if !ok {
		return
	}
	if err := h.storageService.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to remove tea cover")
	}
}

func bindTea(c *gin.Context, req *models.TeaBase) bool {
	if !bindJSON(c, req) {
		return false
	}
	req.Normalize()
	return true
}

// POST /api/admin/upload
func (h *AdminHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyUploadMissingFile), nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.storageService.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": result.URL})
}

// POST /api/admin/import/excel
func (h *AdminHandler) ImportExcel(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUploadMissingFile), nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	preview, err := h.importService.Preview(file, lang)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// POST /api/admin/import/commit
func (h *AdminHandler) ImportCommit(c *gin.Context) {
	var req services.ImportCommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	inserted, err := h.importService.Commit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.OKResponse(c, gin.H{"inserted": inserted})
}

// GET /api/admin/dashboard/summary
func (h *AdminHandler) DashboardSummary(c *gin.Context) {
	window, err := reco.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondRangeError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/admin/dashboard/rank
func (h *AdminHandler) DashboardRank(c *gin.Context) {
	window, err := reco.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondRangeError(c, err)
		return
	}

	rows, err := h.dashboardService.Rank(c.Request.Context(), reco.ParseRankSort(c.Query("sort")), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// GET /api/admin/dashboard/trend
func (h *AdminHandler) DashboardTrend(c *gin.Context) {
	window, err := reco.ParseDateRange(c.Query("from"), c.Query("to"))
	if err == nil && window == nil {
		err = reco.ErrRangeIncomplete
	}
	if err != nil {
		respondRangeError(c, err)
		return
	}

	points, err := h.dashboardService.Trend(c.Request.Context(), *window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}
