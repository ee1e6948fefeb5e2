package reco

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

const MaxPageSize = 50

var ErrInvalidPagination = errors.New("invalid pagination")

type SelectionQuery struct {
	Category   string
	AnonUserID string
	ExcludeIDs []uint
	IncludeIDs []uint
	Page       int
	PageSize   int
}

// Validate also rejects pages whose offset would overflow int.
func (q SelectionQuery) Validate() error {
	if q.Page < 1 || q.PageSize < 1 || q.PageSize > MaxPageSize {
		return ErrInvalidPagination
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return ErrInvalidPagination
	}
	return nil
}

// NeedsFeedbackExclusion reports whether the plan depends on the ids the
// visitor already gave feedback on today. Callers skip that lookup otherwise.
func (q SelectionQuery) NeedsFeedbackExclusion() bool {
	return len(q.IncludeIDs) == 0 && q.AnonUserID != ""
}

// SelectionPlan is the resolved filter. Stores translate it into a query
// over online teas ordered by weight, created_at and id, all descending.
type SelectionPlan struct {
	Category string
	OnlyIDs  []uint // nil when there is no explicit id restriction
	Exclude  []uint
	Offset   int
	Limit    int
}

// Plan applies the listing precedence:
//  1. online, optionally narrowed by category
//  2. an explicit id list restricts to those ids and skips step 3
//  3. otherwise a known visitor loses everything they gave feedback on today
//  4. excluded ids are always removed
//
// fedToday is ignored unless NeedsFeedbackExclusion is true.
func Plan(q SelectionQuery, fedToday []uint) (SelectionPlan, error) {
	if err := q.Validate(); err != nil {
		return SelectionPlan{}, err
	}

	plan := SelectionPlan{
		Category: q.Category,
		Offset:   (q.Page - 1) * q.PageSize,
		Limit:    q.PageSize,
	}

	excluded := newIDSet(q.ExcludeIDs)
	if len(q.IncludeIDs) > 0 {
		plan.OnlyIDs = newIDSet(q.IncludeIDs).sorted()
	} else if q.AnonUserID != "" {
		for _, id := range fedToday {
			excluded[id] = struct{}{}
		}
	}
	plan.Exclude = excluded.sorted()

	return plan, nil
}

// ParseIDList reads a comma separated id list. Blank and non-numeric tokens
// are skipped.
func ParseIDList(raw string) []uint {
	var ids []uint
	seen := make(idSet)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		if _, dup := seen[uint(n)]; dup {
			continue
		}
		seen[uint(n)] = struct{}{}
		ids = append(ids, uint(n))
	}
	return ids
}

type idSet map[uint]struct{}

func newIDSet(ids []uint) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) sorted() []uint {
	out := make([]uint, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
