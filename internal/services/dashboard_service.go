// internal/services/dashboard_service.go
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/models"
	"github.com/laihecha/tea-api/internal/reco"
)

type DashboardService struct {
	db    *gorm.DB
	teas  *TeaService
	clock Clock
}

type DashboardSummary struct {
	PV       int64    `json:"pv"`
	Likes    int64    `json:"likes"`
	Dislikes int64    `json:"dislikes"`
	LikeRate *float64 `json:"like_rate"`
}

type DashboardRankRow struct {
	Tea          models.Tea `json:"tea"`
	PV           int64      `json:"pv"`
	Likes        int64      `json:"likes"`
	Dislikes     int64      `json:"dislikes"`
	LikeRate     *float64   `json:"like_rate"`
	SmoothedRate float64    `json:"smoothed_rate"`
	Score        float64    `json:"score"`
}

type DashboardTrendPoint struct {
	Date     string `json:"date"`
	PV       int64  `json:"pv"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
}

func NewDashboardService(db *gorm.DB, teas *TeaService, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	return &DashboardService{db: db, teas: teas, clock: clock}
}

func (s *DashboardService) Summary(ctx context.Context, window *reco.Window) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	if err := s.impressions(ctx, window).Count(&summary.PV).Error; err != nil {
		return nil, fmt.Errorf("failed to count impressions: %w", err)
	}
	if err := s.feedbacks(ctx, window, models.FeedbackActionLike).Count(&summary.Likes).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	if err := s.feedbacks(ctx, window, models.FeedbackActionDislike).Count(&summary.Dislikes).Error; err != nil {
		return nil, fmt.Errorf("failed to count dislikes: %w", err)
	}

	summary.LikeRate = reco.RawLikeRate(summary.Likes, summary.PV)
	return summary, nil
}

type teaCount struct {
	TeaID uint
	N     int64
}

// Rank reports per-tea metrics for every online tea. Counts come from three
// grouped queries rather than one query per tea.
func (s *DashboardService) Rank(ctx context.Context, by reco.RankSort, window *reco.Window) ([]DashboardRankRow, error) {
	teas, err := s.teas.Online(ctx)
	if err != nil {
		return nil, err
	}

	pv, err := s.countByTea(s.impressions(ctx, window))
	if err != nil {
		return nil, fmt.Errorf("failed to count impressions: %w", err)
	}
	likes, err := s.countByTea(s.feedbacks(ctx, window, models.FeedbackActionLike))
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	dislikes, err := s.countByTea(s.feedbacks(ctx, window, models.FeedbackActionDislike))
	if err != nil {
		return nil, fmt.Errorf("failed to count dislikes: %w", err)
	}

	byID := make(map[uint]models.Tea, len(teas))
	rows := make([]reco.Metrics, 0, len(teas))
	for _, t := range teas {
		byID[t.ID] = t
		rows = append(rows, reco.Metrics{
			TeaID:     t.ID,
			CreatedAt: t.CreatedAt,
			PV:        pv[t.ID],
			Likes:     likes[t.ID],
			Dislikes:  dislikes[t.ID],
		})
	}

	ranked := reco.Rank(rows, by, s.clock())
	out := make([]DashboardRankRow, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, DashboardRankRow{
			Tea:          byID[r.TeaID],
			PV:           r.PV,
			Likes:        r.Likes,
			Dislikes:     r.Dislikes,
			LikeRate:     r.LikeRate,
			SmoothedRate: r.SmoothedRate,
			Score:        r.Score,
		})
	}
	return out, nil
}

type dayCount struct {
	Day string
	N   int64
}

// Trend returns one point per calendar day of window, zero-filled.
func (s *DashboardService) Trend(ctx context.Context, window reco.Window) ([]DashboardTrendPoint, error) {
	pv, err := s.countByDay(s.impressions(ctx, &window))
	if err != nil {
		return nil, fmt.Errorf("failed to bucket impressions: %w", err)
	}
	likes, err := s.countByDay(s.feedbacks(ctx, &window, models.FeedbackActionLike))
	if err != nil {
		return nil, fmt.Errorf("failed to bucket likes: %w", err)
	}
	dislikes, err := s.countByDay(s.feedbacks(ctx, &window, models.FeedbackActionDislike))
	if err != nil {
		return nil, fmt.Errorf("failed to bucket dislikes: %w", err)
	}

	days := window.Days()
	points := make([]DashboardTrendPoint, 0, len(days))
	for _, d := range days {
		points = append(points, DashboardTrendPoint{
			Date:     d,
			PV:       pv[d],
			Likes:    likes[d],
			Dislikes: dislikes[d],
		})
	}
	return points, nil
}

func (s *DashboardService) impressions(ctx context.Context, window *reco.Window) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Event{}).Where("type = ?", models.EventTypeImpression)
	return inWindow(q, window)
}

func (s *DashboardService) feedbacks(ctx context.Context, window *reco.Window, action models.FeedbackAction) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Feedback{}).Where("action = ?", action)
	return inWindow(q, window)
}

func inWindow(q *gorm.DB, window *reco.Window) *gorm.DB {
	if window == nil {
		return q
	}
	return q.Where("created_at >= ? AND created_at < ?", window.From, window.To)
}

func (s *DashboardService) countByTea(q *gorm.DB) (map[uint]int64, error) {
	var rows []teaCount
	if err := q.Select("tea_id, COUNT(*) AS n").Group("tea_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.TeaID] = r.N
	}
	return out, nil
}

func (s *DashboardService) countByDay(q *gorm.DB) (map[string]int64, error) {
	expr := dayExpr(s.db.Dialector.Name())
	var rows []dayCount
	if err := q.Select(expr + " AS day, COUNT(*) AS n").Group(expr).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Day] = r.N
	}
	return out, nil
}

// dayExpr formats created_at as a UTC YYYY-MM-DD in the dialect at hand.
// Postgres stores timestamptz, so the session zone is overridden. MySQL
// DATETIME and SQLite text carry no zone and hold UTC as long as the
// connection writes UTC (loc=UTC for MySQL, see DatabaseConfig.ConnString).
func dayExpr(dialect string) string {
	switch dialect {
	case "postgres":
		return "to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	case "mysql":
		return "DATE_FORMAT(created_at, '%Y-%m-%d')"
	default:
		return "strftime('%Y-%m-%d', created_at)"
	}
}
