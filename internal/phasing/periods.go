// Package phasing turns a control account's total budget into an ordered
// sequence of calendar-period planned-value slices. All functions are
// pure; persistence of the generated slices belongs to the service layer.
package phasing

import (
	"time"

	"github.com/cvergaras/obracost/internal/domain"
)

// Period is one calendar window of a distribution. Start is inclusive,
// End exclusive except for the final period, which is clamped to the
// requested range end.
type Period struct {
	Number int // 1-based
	Start  time.Time
	End    time.Time
}

// EnumeratePeriods splits [start, end] into consecutive whole periods of
// the given type. The final period is clamped to end, so short tails form
// a full (shorter) period rather than being dropped.
func EnumeratePeriods(start, end time.Time, periodType domain.PeriodType) ([]Period, error) {
	if !end.After(start) {
		return nil, &domain.InvalidRangeError{
			Start:  start.Format("2006-01-02"),
			End:    end.Format("2006-01-02"),
			Reason: "end must be after start",
		}
	}

	var periods []Period
	cur := start
	for n := 1; cur.Before(end); n++ {
		next := advance(cur, periodType)
		if next.After(end) {
			next = end
		}
		periods = append(periods, Period{Number: n, Start: cur, End: next})
		cur = next
	}
	return periods, nil
}

func advance(t time.Time, periodType domain.PeriodType) time.Time {
	switch periodType {
	case domain.PeriodDaily:
		return t.AddDate(0, 0, 1)
	case domain.PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case domain.PeriodQuarterly:
		return t.AddDate(0, 3, 0)
	default: // monthly
		return t.AddDate(0, 1, 0)
	}
}
