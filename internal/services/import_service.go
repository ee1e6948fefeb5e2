// internal/services/import_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/laihecha/tea-api/internal/i18n"
	"github.com/laihecha/tea-api/internal/metrics"
	"github.com/laihecha/tea-api/internal/models"
)

// Spreadsheet header names used by the catalog operators.
const (
	ColName     = "名称"
	ColCategory = "分类"
	ColYear     = "年份"
	ColOrigin   = "产地"
	ColSpec     = "规格"
	ColCoverURL = "主图URL"
	ColPriceMin = "价格下限"
	ColPriceMax = "价格上限"
	ColIntro    = "简介"
)

var RequiredImportColumns = []string{ColName, ColCategory, ColYear, ColOrigin, ColSpec, ColCoverURL}

var ErrUnreadableSheet = errors.New("unreadable spreadsheet")

// MissingColumnsError is returned when the header row lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrBadRequest
}

type ImportRow struct {
	Index  int             `json:"index"`
	OK     bool            `json:"ok"`
	Errors []string        `json:"errors"`
	Data   *models.TeaBase `json:"data"`
}

type ImportPreview struct {
	Columns   []string    `json:"columns"`
	Rows      []ImportRow `json:"rows"`
	TotalRows int         `json:"total_rows"`
}

type ImportCommitRequest struct {
	Items []models.TeaBase `json:"items" binding:"required"`
}

type ImportService struct {
	teas *TeaService
}

func NewImportService(teas *TeaService) *ImportService {
	return &ImportService{teas: teas}
}

// Preview parses the first sheet and validates every data row on its own.
// Nothing is written; row messages are localized to lang.
func (s *ImportService) Preview(r io.Reader, lang string) (*ImportPreview, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrBadRequest, ErrUnreadableSheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %w: no sheets", ErrBadRequest, ErrUnreadableSheet)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrBadRequest, ErrUnreadableSheet, err)
	}

	var header []string
	if len(rows) > 0 {
		header = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredImportColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	data := rows[1:]
	preview := &ImportPreview{
		Columns:   header,
		Rows:      make([]ImportRow, 0, len(data)),
		TotalRows: len(data),
	}
	for i, cells := range data {
		row := parseImportRow(i, sheetRow{cells: cells, index: index}, lang)
		metrics.RecordImportRow(row.OK)
		preview.Rows = append(preview.Rows, row)
	}

	logrus.WithFields(logrus.Fields{
		"sheet": sheets[0],
		"rows":  preview.TotalRows,
	}).Info("Parsed import spreadsheet")

	return preview, nil
}

// Commit inserts the previewed items in one batch.
func (s *ImportService) Commit(ctx context.Context, req *ImportCommitRequest) (int, error) {
	inserted, err := s.teas.BulkCreate(ctx, req.Items)
	if err != nil {
		return 0, err
	}
	logrus.WithField("inserted", inserted).Info("Committed tea import")
	return inserted, nil
}

type sheetRow struct {
	cells []string
	index map[string]int
}

func (r sheetRow) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func parseImportRow(i int, r sheetRow, lang string) ImportRow {
	row := ImportRow{Index: i, Errors: []string{}}

	base := models.TeaBase{
		Name:     r.get(ColName),
		Category: r.get(ColCategory),
		Origin:   r.get(ColOrigin),
		Spec:     r.get(ColSpec),
		CoverURL: r.get(ColCoverURL),
		Status:   models.TeaStatusOnline,
	}

	required := func(col, value string) {
		if value == "" {
			row.Errors = append(row.Errors, i18n.T(lang, i18n.KeyImportFieldRequired, col))
		}
	}
	required(ColName, base.Name)
	required(ColCategory, base.Category)

	year, ok := parseWholeNumber(r.get(ColYear))
	if !ok || year <= 0 {
		row.Errors = append(row.Errors, i18n.T(lang, i18n.KeyImportYearInvalid))
	}
	base.Year = year

	required(ColOrigin, base.Origin)
	required(ColSpec, base.Spec)
	required(ColCoverURL, base.CoverURL)

	for _, p := range []struct {
		col string
		dst **int
	}{{ColPriceMin, &base.PriceMin}, {ColPriceMax, &base.PriceMax}} {
		raw := r.get(p.col)
		if raw == "" {
			continue
		}
		v, ok := parseWholeNumber(raw)
		if !ok {
			row.Errors = append(row.Errors, i18n.T(lang, i18n.KeyImportPriceInvalid, p.col))
			continue
		}
		*p.dst = &v
	}

	if intro := r.get(ColIntro); intro != "" {
		base.Intro = &intro
	}

	if len(row.Errors) > 0 {
		return row
	}
	row.OK = true
	row.Data = &base
	return row
}

// parseWholeNumber accepts "2019" as well as "2019.0", which is how numeric
// cells come back from some spreadsheet editors.
func parseWholeNumber(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
