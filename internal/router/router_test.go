package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/database"
	"github.com/laihecha/tea-api/internal/utils"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Environment: "test",
		Database:    config.DatabaseConfig{Driver: config.DriverSQLite},
		Admin:       config.AdminConfig{Username: "admin", Password: "pw"},
		JWT:         config.JWTConfig{SecretKey: "test-secret", ExpireMinutes: 60},
		Upload:      config.UploadConfig{Dir: filepath.Join(t.TempDir(), "uploads"), MaxSizeMB: 1, PublicURL: "/uploads"},
		RateLimit:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	cancel context.CancelFunc
	token  string
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory()
	suite.Require().NoError(err)
	suite.db = db

	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel

	suite.router, err = Initialize(ctx, db, testConfig(suite.T()))
	suite.Require().NoError(err)
	suite.token = ""
}

func (suite *APITestSuite) TearDownTest() {
	suite.cancel()
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (suite *APITestSuite) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) upload(path, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *APITestSuite) assertError(w *httptest.ResponseRecorder, status int, code, message string) {
	suite.Equal(status, w.Code, w.Body.String())
	var body utils.ErrorBody
	suite.decode(w, &body)
	suite.Equal(code, body.Detail.Code)
	if message != "" {
		suite.Equal(message, body.Detail.Message)
	}
}

func (suite *APITestSuite) login() {
	w := suite.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin", "password": "pw"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	suite.decode(w, &body)
	suite.Require().NotEmpty(body.Token)
	suite.token = body.Token
}

func (suite *APITestSuite) createTea(name, category string) uint {
	w := suite.do(http.MethodPost, "/api/admin/teas", gin.H{
		"name": name, "category": category, "year": 2020, "origin": "云南",
		"spec": "357g", "cover_url": "/uploads/x.jpg",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var tea struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	suite.decode(w, &tea)
	suite.Equal("online", tea.Status)
	return tea.ID
}

type listBody struct {
	Items []struct {
		ID uint `json:"id"`
	} `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func (l listBody) ids() []uint {
	out := []uint{}
	for _, it := range l.Items {
		out = append(out, it.ID)
	}
	return out
}

func (suite *APITestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok":true}`, w.Body.String())
}

func (suite *APITestSuite) TestMetricsEndpoint() {
	suite.do(http.MethodGet, "/health", nil)
	w := suite.do(http.MethodGet, "/metrics", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "tea_http_requests_total")
}

func (suite *APITestSuite) TestPublicListPagination() {
	w := suite.do(http.MethodGet, "/api/teas", nil)
	suite.Equal(http.StatusOK, w.Code)
	var body listBody
	suite.decode(w, &body)
	suite.Equal(1, body.Page)
	suite.Equal(10, body.PageSize)
	suite.Zero(body.Total)

	suite.assertError(suite.do(http.MethodGet, "/api/teas?page_size=51", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid pagination")
	suite.assertError(suite.do(http.MethodGet, "/api/teas?page=0", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid pagination")
	suite.assertError(suite.do(http.MethodGet, "/api/teas?page=abc", nil), http.StatusBadRequest, utils.CodeBadRequest, "")
	suite.assertError(suite.do(http.MethodGet, "/api/teas?page=9223372036854775807", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid pagination")

	suite.login()
	suite.assertError(suite.do(http.MethodGet, "/api/admin/teas?page=9223372036854775807", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid pagination")
}

func (suite *APITestSuite) TestFeedbackFlow() {
	suite.login()
	first := suite.createTea("冰岛", "普洱")
	second := suite.createTea("易武", "普洱")
	suite.token = ""

	w := suite.do(http.MethodPost, "/api/events", gin.H{"anon_user_id": "visitor-1", "tea_id": first, "type": "impression"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/feedback", gin.H{"anon_user_id": "visitor-1", "tea_id": first, "action": "like"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true}`, w.Body.String())

	w = suite.do(http.MethodPost, "/api/feedback", gin.H{"anon_user_id": "visitor-1", "tea_id": first, "action": "like"})
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok":true,"dedup":true}`, w.Body.String())

	w = suite.do(http.MethodGet, "/api/teas?anon_user_id=visitor-1", nil)
	var body listBody
	suite.decode(w, &body)
	suite.Equal([]uint{second}, body.ids())

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/teas?anon_user_id=visitor-1&tea_ids=%d", first), nil)
	body = listBody{}
	suite.decode(w, &body)
	suite.Equal([]uint{first}, body.ids())

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/teas?tea_ids=%d&exclude_ids=%d", first, first), nil)
	body = listBody{}
	suite.decode(w, &body)
	suite.Empty(body.ids())
	suite.Zero(body.Total)
}

func (suite *APITestSuite) TestFeedbackValidation() {
	w := suite.do(http.MethodPost, "/api/feedback", gin.H{"anon_user_id": "v", "tea_id": 1, "action": "love"})
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "invalid action")

	w = suite.do(http.MethodPost, "/api/feedback", gin.H{"anon_user_id": "v", "tea_id": 1, "action": "love"}, "Accept-Language", "zh-CN,zh;q=0.9")
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "无效的操作")

	w = suite.do(http.MethodPost, "/api/feedback", gin.H{"anon_user_id": "v", "action": "like"})
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "")

	w = suite.do(http.MethodPost, "/api/events", gin.H{"tea_id": 1, "type": "impression"})
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "")
}

func (suite *APITestSuite) TestMessageFeedback() {
	w := suite.do(http.MethodPost, "/api/feedback/message", gin.H{"anon_user_id": "v", "message": "希望多些白茶", "contact": "mail@example.com"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true}`, w.Body.String())
}

func (suite *APITestSuite) TestAdminRequiresToken() {
	suite.assertError(suite.do(http.MethodGet, "/api/admin/teas", nil), http.StatusUnauthorized, utils.CodeUnauthorized, "missing token")
	suite.assertError(suite.do(http.MethodGet, "/api/admin/teas", nil, "Authorization", "Token abc"), http.StatusUnauthorized, utils.CodeUnauthorized, "missing token")
	suite.assertError(suite.do(http.MethodGet, "/api/admin/teas", nil, "Authorization", "Bearer abc"), http.StatusUnauthorized, utils.CodeUnauthorized, "invalid token")
}

func (suite *APITestSuite) TestLogin() {
	w := suite.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin", "password": "nope"})
	suite.assertError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "bad credentials")

	w = suite.do(http.MethodPost, "/api/admin/login", gin.H{"username": "admin"})
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "")

	suite.login()
	w = suite.do(http.MethodGet, "/api/admin/teas", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestAdminTeaLifecycle() {
	suite.login()
	id := suite.createTea("老班章", "普洱")

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/teas/%d", id), nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, fmt.Sprintf("/api/admin/teas/%d", id), gin.H{
		"name": "老班章", "category": "普洱", "year": 2018, "origin": "勐海",
		"spec": "357g", "cover_url": "/uploads/x.jpg", "status": "offline", "weight": 5,
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	suite.assertError(suite.do(http.MethodGet, fmt.Sprintf("/api/teas/%d", id), nil), http.StatusNotFound, utils.CodeNotFound, "tea not found")

	w = suite.do(http.MethodGet, "/api/admin/teas?status=offline", nil)
	var body listBody
	suite.decode(w, &body)
	suite.Equal([]uint{id}, body.ids())

	w = suite.do(http.MethodDelete, fmt.Sprintf("/api/admin/teas/%d", id), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.assertError(suite.do(http.MethodDelete, fmt.Sprintf("/api/admin/teas/%d", id), nil), http.StatusNotFound, utils.CodeNotFound, "")
	suite.assertError(suite.do(http.MethodPut, "/api/admin/teas/abc", gin.H{}), http.StatusBadRequest, utils.CodeBadRequest, "")
}

func (suite *APITestSuite) TestDashboardRanges() {
	suite.login()

	suite.assertError(suite.do(http.MethodGet, "/api/admin/dashboard/trend", nil), http.StatusBadRequest, utils.CodeBadRequest, "from/to required")
	suite.assertError(suite.do(http.MethodGet, "/api/admin/dashboard/summary?from=2024-01-01", nil), http.StatusBadRequest, utils.CodeBadRequest, "from/to required")
	suite.assertError(suite.do(http.MethodGet, "/api/admin/dashboard/rank?from=2024-13-01&to=2024-01-02", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid date")
	suite.assertError(suite.do(http.MethodGet, "/api/admin/dashboard/summary?from=2024-01-05&to=2024-01-01", nil), http.StatusBadRequest, utils.CodeBadRequest, "invalid range")

	w := suite.do(http.MethodGet, "/api/admin/dashboard/trend?from=2024-01-01&to=2024-01-03", nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var trend struct {
		Points []struct {
			Date string `json:"date"`
			PV   int64  `json:"pv"`
		} `json:"points"`
	}
	suite.decode(w, &trend)
	suite.Require().Len(trend.Points, 3)
	suite.Equal("2024-01-03", trend.Points[2].Date)

	w = suite.do(http.MethodGet, "/api/admin/dashboard/summary", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"pv":0,"likes":0,"dislikes":0,"like_rate":null}`, w.Body.String())

	suite.createTea("滇红", "红茶")
	w = suite.do(http.MethodGet, "/api/admin/dashboard/rank?sort=created_at", nil)
	suite.Equal(http.StatusOK, w.Code)
	var rank struct {
		Items []struct {
			PV           int64    `json:"pv"`
			LikeRate     *float64 `json:"like_rate"`
			SmoothedRate float64  `json:"smoothed_rate"`
		} `json:"items"`
	}
	suite.decode(w, &rank)
	suite.Require().Len(rank.Items, 1)
	suite.Nil(rank.Items[0].LikeRate)
	suite.InDelta(0.5, rank.Items[0].SmoothedRate, 1e-9)
}

func (suite *APITestSuite) TestUploadIsServed() {
	suite.login()

	w := suite.upload("/api/admin/upload", "cover.png", []byte("png-bytes"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var body struct {
		URL string `json:"url"`
	}
	suite.decode(w, &body)
	suite.Regexp(`^/uploads/[0-9a-f]{32}\.png$`, body.URL)

	w = suite.do(http.MethodGet, body.URL, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("png-bytes", w.Body.String())
}

func (suite *APITestSuite) TestDeletingLastTeaRemovesUploadedCover() {
	suite.login()

	w := suite.upload("/api/admin/upload", "cover.png", []byte("png-bytes"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var uploaded struct {
		URL string `json:"url"`
	}
	suite.decode(w, &uploaded)

	var teaIDs []uint
	for _, name := range []string{"凤凰单丛", "鸭屎香"} {
		w = suite.do(http.MethodPost, "/api/admin/teas", gin.H{
			"name": name, "category": "乌龙", "year": 2021, "origin": "潮州",
			"spec": "250g", "cover_url": uploaded.URL,
		})
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var tea struct {
			ID uint `json:"id"`
		}
		suite.decode(w, &tea)
		teaIDs = append(teaIDs, tea.ID)
	}

	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, fmt.Sprintf("/api/admin/teas/%d", teaIDs[0]), nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, uploaded.URL, nil).Code)

	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, fmt.Sprintf("/api/admin/teas/%d", teaIDs[1]), nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, uploaded.URL, nil).Code)
}

func (suite *APITestSuite) TestImportPreviewAndCommit() {
	suite.login()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	suite.Require().NoError(f.SetSheetRow(sheet, "A1", &[]interface{}{"名称", "分类", "年份", "产地", "规格", "主图URL"}))
	suite.Require().NoError(f.SetSheetRow(sheet, "A2", &[]interface{}{"金骏眉", "红茶", 2022, "桐木关", "100g", "/uploads/j.jpg"}))
	suite.Require().NoError(f.SetSheetRow(sheet, "A3", &[]interface{}{"", "红茶", 2022, "桐木关", "100g", "/uploads/k.jpg"}))
	buf, err := f.WriteToBuffer()
	suite.Require().NoError(err)
	suite.Require().NoError(f.Close())

	w := suite.upload("/api/admin/import/excel", "teas.xlsx", buf.Bytes())
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var preview struct {
		TotalRows int `json:"total_rows"`
		Rows      []struct {
			Index  int                    `json:"index"`
			OK     bool                   `json:"ok"`
			Errors []string               `json:"errors"`
			Data   map[string]interface{} `json:"data"`
		} `json:"rows"`
	}
	suite.decode(w, &preview)
	suite.Equal(2, preview.TotalRows)
	suite.Require().Len(preview.Rows, 2)
	suite.True(preview.Rows[0].OK)
	suite.False(preview.Rows[1].OK)
	suite.Equal([]string{"名称 is required"}, preview.Rows[1].Errors)

	w = suite.do(http.MethodPost, "/api/admin/import/commit", gin.H{"items": []interface{}{preview.Rows[0].Data}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true,"inserted":1}`, w.Body.String())

	w = suite.do(http.MethodGet, "/api/teas?category=红茶", nil)
	var list listBody
	suite.decode(w, &list)
	suite.Equal(int64(1), list.Total)

	missing := excelize.NewFile()
	suite.Require().NoError(missing.SetSheetRow(missing.GetSheetName(0), "A1", &[]interface{}{"名称"}))
	buf, err = missing.WriteToBuffer()
	suite.Require().NoError(err)
	w = suite.upload("/api/admin/import/excel", "bad.xlsx", buf.Bytes())
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "missing columns: 分类, 年份, 产地, 规格, 主图URL")

	w = suite.upload("/api/admin/import/excel", "bad.xlsx", []byte("plain text"))
	suite.assertError(w, http.StatusBadRequest, utils.CodeBadRequest, "unable to read spreadsheet")
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestRateLimitRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	r, err := Initialize(ctx, db, cfg)
	require.NoError(t, err)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/teas", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/teas", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	var body utils.ErrorBody
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, utils.CodeRateLimited, body.Detail.Code)

	health := httptest.NewRecorder()
	r.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}
