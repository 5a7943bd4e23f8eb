package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Productivity score weights: average entry length and completion carry
// most of the signal, billable share the rest.
const (
	weightHoursPerEntry = 0.4
	weightCompletion    = 0.4
	weightBillable      = 0.2

	// deadband: a score within ±5% of the previous bucket reads as stable
	trendUpThreshold   = 1.05
	trendDownThreshold = 0.95
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(part / whole * 100)
}

func capPct(v float64) float64 {
	return math.Min(100, v)
}

// Summarize reduces a row set to the headline aggregate. All rates are 0 on
// empty input, never NaN. expectedHoursPerDay is the compliance baseline.
func Summarize(rows []Row, expectedHoursPerDay float64) Summary {
	s := Summary{
		StatusBreakdown:   map[string]int{},
		PriorityBreakdown: map[string]int{},
	}

	users := map[int64]struct{}{}
	days := map[string]struct{}{}
	perUserDay := map[string]float64{}

	for _, r := range rows {
		s.TotalEntries++
		s.TotalHours += r.Hours
		if r.Billable {
			s.BillableHours += r.Hours
		}
		users[r.UserID] = struct{}{}
		days[r.Date.String()] = struct{}{}
		perUserDay[fmt.Sprintf("%d|%s", r.UserID, r.Date.String())] += r.Hours
		s.StatusBreakdown[r.Status]++
		s.PriorityBreakdown[r.Priority]++
	}

	s.UniqueUsers = len(users)
	s.TotalDays = len(days)
	s.TotalHours = round2(s.TotalHours)
	s.BillableHours = round2(s.BillableHours)

	if s.UniqueUsers > 0 && s.TotalDays > 0 {
		s.AverageHoursPerUserPerDay = round2(s.TotalHours / float64(s.UniqueUsers) / float64(s.TotalDays))
	}

	if expectedHoursPerDay > 0 {
		s.ComplianceRate = capPct(math.Round(s.AverageHoursPerUserPerDay / expectedHoursPerDay * 100))

		capacity := float64(s.UniqueUsers) * expectedHoursPerDay * float64(s.TotalDays)
		if capacity > 0 {
			s.UtilizationRate = capPct(math.Round(s.TotalHours / capacity * 100))
		}

		for _, hours := range perUserDay {
			if hours > expectedHoursPerDay {
				s.OvertimeHours += hours - expectedHoursPerDay
			}
		}
		s.OvertimeHours = round2(s.OvertimeHours)
	}

	return s
}

// ByDepartment groups the rows per department, sorted by hours descending.
func ByDepartment(rows []Row) []DepartmentStat {
	type acc struct {
		stat  DepartmentStat
		users map[int64]struct{}
		done  int
	}
	groups := map[string]*acc{}

	for _, r := range rows {
		g, ok := groups[r.Department]
		if !ok {
			g = &acc{stat: DepartmentStat{Department: r.Department}, users: map[int64]struct{}{}}
			groups[r.Department] = g
		}
		g.stat.TotalEntries++
		g.stat.TotalHours += r.Hours
		if r.Billable {
			g.stat.BillableHours += r.Hours
		}
		if r.Status == timesheet.StatusCompleted {
			g.done++
		}
		g.users[r.UserID] = struct{}{}
	}

	stats := make([]DepartmentStat, 0, len(groups))
	for _, g := range groups {
		g.stat.TotalHours = round2(g.stat.TotalHours)
		g.stat.BillableHours = round2(g.stat.BillableHours)
		g.stat.UniqueUsers = len(g.users)
		g.stat.CompletionRate = pct(float64(g.done), float64(g.stat.TotalEntries))
		stats = append(stats, g.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalHours != stats[j].TotalHours {
			return stats[i].TotalHours > stats[j].TotalHours
		}
		return stats[i].Department < stats[j].Department
	})
	return stats
}

// ByUser groups the rows per user, sorted by hours descending.
func ByUser(rows []Row) []UserStat {
	type acc struct {
		stat UserStat
		done int
	}
	groups := map[int64]*acc{}

	for _, r := range rows {
		g, ok := groups[r.UserID]
		if !ok {
			g = &acc{stat: UserStat{
				UserID:     r.UserID,
				Name:       r.UserName,
				Email:      r.UserEmail,
				Department: r.Department,
			}}
			groups[r.UserID] = g
		}
		g.stat.TotalEntries++
		g.stat.TotalHours += r.Hours
		if r.Billable {
			g.stat.BillableHours += r.Hours
		}
		if r.Status == timesheet.StatusCompleted {
			g.done++
		}
	}

	stats := make([]UserStat, 0, len(groups))
	for _, g := range groups {
		g.stat.TotalHours = round2(g.stat.TotalHours)
		g.stat.BillableHours = round2(g.stat.BillableHours)
		g.stat.CompletionRate = pct(float64(g.done), float64(g.stat.TotalEntries))
		stats = append(stats, g.stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalHours != stats[j].TotalHours {
			return stats[i].TotalHours > stats[j].TotalHours
		}
		return stats[i].UserID < stats[j].UserID
	})
	return stats
}

func bucketKey(d timesheet.DateOnly, g Granularity) string {
	switch g {
	case GranularityDaily:
		return d.String()
	case GranularityWeekly:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonthly:
		return d.Format("2006-01")
	default:
		return d.String()
	}
}

// Trends buckets the rows by period and scores each bucket. The direction
// compares against the previous bucket's score with a 5% deadband; the first
// bucket is always stable.
func Trends(rows []Row, g Granularity) []TrendPoint {
	type acc struct {
		entries  int
		hours    float64
		done     int
		billable int
	}
	buckets := map[string]*acc{}

	for _, r := range rows {
		key := bucketKey(r.Date, g)
		b, ok := buckets[key]
		if !ok {
			b = &acc{}
			buckets[key] = b
		}
		b.entries++
		b.hours += r.Hours
		if r.Status == timesheet.StatusCompleted {
			b.done++
		}
		if r.Billable {
			b.billable++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]TrendPoint, 0, len(keys))
	prevScore := 0.0
	for i, k := range keys {
		b := buckets[k]
		p := TrendPoint{
			Period:       k,
			TotalEntries: b.entries,
			TotalHours:   round2(b.hours),
		}
		if b.entries > 0 {
			p.HoursPerEntry = round2(b.hours / float64(b.entries))
			p.CompletionRate = pct(float64(b.done), float64(b.entries))
			p.BillableRate = pct(float64(b.billable), float64(b.entries))
		}
		p.Score = round2(weightHoursPerEntry*p.HoursPerEntry +
			weightCompletion*p.CompletionRate +
			weightBillable*p.BillableRate)

		switch {
		case i == 0:
			p.Direction = TrendStable
		case prevScore == 0:
			if p.Score > 0 {
				p.Direction = TrendUp
			} else {
				p.Direction = TrendStable
			}
		case p.Score > prevScore*trendUpThreshold:
			p.Direction = TrendUp
		case p.Score < prevScore*trendDownThreshold:
			p.Direction = TrendDown
		default:
			p.Direction = TrendStable
		}

		prevScore = p.Score
		points = append(points, p)
	}

	return points
}
