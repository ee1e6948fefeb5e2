package reco

import (
	"sort"
	"time"
)

// LaplaceLikeRate is (likes+1)/(impressions+2), strictly inside (0, 1).
// Likes and impressions are counted separately, so likes are clamped to
// [0, impressions] first: every like implies an impression.
func LaplaceLikeRate(likes, impressions int64) float64 {
	if impressions < 0 {
		impressions = 0
	}
	if likes > impressions {
		likes = impressions
	}
	if likes < 0 {
		likes = 0
	}
	return float64(likes+1) / float64(impressions+2)
}

// RecencyBoost is a step function of age in whole days.
func RecencyBoost(createdAt, now time.Time) float64 {
	days := int(now.Sub(createdAt).Hours() / 24)
	switch {
	case days <= 7:
		return 0.15
	case days <= 30:
		return 0.05
	default:
		return 0
	}
}

// Score combines the smoothed like rate with the recency boost, capped at 1.
// The public listing does not order by it yet; it orders by weight.
func Score(likes, impressions int64, createdAt, now time.Time) float64 {
	s := LaplaceLikeRate(likes, impressions) + RecencyBoost(createdAt, now)
	if s > 1 {
		return 1
	}
	return s
}

// RawLikeRate is likes/impressions, nil when there were no impressions.
func RawLikeRate(likes, impressions int64) *float64 {
	if impressions == 0 {
		return nil
	}
	r := float64(likes) / float64(impressions)
	return &r
}

type RankSort string

const (
	SortLikeRate  RankSort = "like_rate"
	SortCreatedAt RankSort = "created_at"
)

// ParseRankSort falls back to like_rate for anything unknown.
func ParseRankSort(s string) RankSort {
	if RankSort(s) == SortCreatedAt {
		return SortCreatedAt
	}
	return SortLikeRate
}

// Metrics are the per-tea counts a rank row is built from.
type Metrics struct {
	TeaID     uint
	CreatedAt time.Time
	PV        int64
	Likes     int64
	Dislikes  int64
}

type Ranked struct {
	Metrics
	LikeRate     *float64
	SmoothedRate float64
	Score        float64
}

// Rank scores every row and orders it. Ties fall back to newest first.
func Rank(rows []Metrics, by RankSort, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(rows))
	for _, m := range rows {
		out = append(out, Ranked{
			Metrics:      m,
			LikeRate:     RawLikeRate(m.Likes, m.PV),
			SmoothedRate: LaplaceLikeRate(m.Likes, m.PV),
			Score:        Score(m.Likes, m.PV, m.CreatedAt, now),
		})
	}

	newer := func(a, b Ranked) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.TeaID > b.TeaID
	}

	sort.SliceStable(out, func(i, j int) bool {
		if by == SortLikeRate {
			ri, rj := rateOrZero(out[i].LikeRate), rateOrZero(out[j].LikeRate)
			if ri != rj {
				return ri > rj
			}
		}
		return newer(out[i], out[j])
	})
	return out
}

func rateOrZero(r *float64) float64 {
	if r == nil {
		return 0
	}
	return *r
}
