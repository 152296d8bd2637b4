package ledger

import (
	"sort"
	"time"
)

// Summary is the column totals of a monthly register.
type Summary struct {
	Entries       int     `json:"entries"`
	TotalOpening  float64 `json:"total_opening"`
	TotalInbound  float64 `json:"total_inbound"`
	TotalOutbound float64 `json:"total_outbound"`
	TotalWastage  float64 `json:"total_wastage"`
	TotalClosing  float64 `json:"total_closing"`
}

// FilterByMonth returns the entries dated in the same calendar year and month
// as monthRef, ordered by date with ties kept in insertion order.
func FilterByMonth(l Ledger, monthRef time.Time) []Entry {
	year, month, _ := monthRef.Date()
	out := make([]Entry, 0)
	for _, e := range l {
		y, m, _ := e.Date.Date()
		if y == year && m == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// MonthlySummary sums each column independently. Callers are expected to pass
// entries of a single register; mixing registers is not detected.
func MonthlySummary(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s.Entries++
		s.TotalOpening += e.Opening
		s.TotalInbound += e.Inbound
		s.TotalOutbound += e.Outbound
		s.TotalWastage += e.Wastage
		s.TotalClosing += e.Closing
	}
	return s
}

// PreviousMonth returns the first day of the month before t.
func PreviousMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
}
