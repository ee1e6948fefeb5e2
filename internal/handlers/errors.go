// internal/handlers/errors.go
package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/i18n"
	"github.com/laihecha/tea-api/internal/reco"
	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

// respondError maps service errors onto the error body. Anything that is not
// one of the service sentinels is logged and reported as internal_error.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var missing *services.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportMissingColumns, strings.Join(missing.Columns, ", ")), nil)
	case errors.Is(err, services.ErrUnreadableSheet):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportUnreadable), nil)
	case errors.Is(err, services.ErrInvalidAction):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationAction), nil)
	case errors.Is(err, reco.ErrInvalidPagination):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationPagination), nil)
	case errors.Is(err, services.ErrBadRequest):
		utils.BadRequestResponse(c, "", err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, i18n.KeyTeaNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrConfig):
		utils.ConfigErrorResponse(c, i18n.T(lang, i18n.KeyAuthInvalidHash))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

// respondRangeError reports a bad from/to pair with its own message.
func respondRangeError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	key := i18n.KeyValidationRange
	switch {
	case errors.Is(err, reco.ErrRangeIncomplete):
		key = i18n.KeyValidationRangePair
	case errors.Is(err, reco.ErrInvalidDate):
		key = i18n.KeyValidationDate
	}
	utils.BadRequestResponse(c, i18n.T(lang, key), nil)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func teaIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return 0, false
	}
	return uint(id), true
}
