package core

import "sort"

// UncategorizedBucket collects spending from entries that carry no category
// or whose category no longer resolves.
const UncategorizedBucket = "uncategorized"

// BudgetInputs carries every row the aggregator reads for one project.
// The caller fetches them; the computation itself touches no storage.
type BudgetInputs struct {
	Project        Project
	Timesheets     []Timesheet
	Equipment      []EquipmentLog
	Subcontractors []SubcontractorEntry
	Overhead       []OverheadEntry
	Reports        []ProgressReport
	Materials      []Material
	Categories     []Category
}

// CategorySpend is the spending total for one category bucket.
type CategorySpend struct {
	CategoryID string `json:"categoryId,omitempty"`
	Name       string `json:"name"`
	Spent      Money  `json:"spent"`
}

// BudgetStats is the full budget picture for one project at a point in time.
type BudgetStats struct {
	ProjectID           string          `json:"projectId"`
	ProjectName         string          `json:"projectName"`
	TotalBudget         Money           `json:"totalBudget"`
	LaborSpent          Money           `json:"laborSpent"`
	EquipmentSpent      Money           `json:"equipmentSpent"`
	SubcontractorsSpent Money           `json:"subcontractorsSpent"`
	OverheadSpent       Money           `json:"overheadSpent"`
	MaterialsSpent      Money           `json:"materialsSpent"`
	TotalSpent          Money           `json:"totalSpent"`
	Remaining           Money           `json:"remaining"`
	PercentUsed         float64         `json:"percentUsed"`
	PercentComplete     int             `json:"percentComplete"`
	SpentToday          Money           `json:"spentToday"`
	DailyBurnRate       Money           `json:"dailyBurnRate"`
	ProjectedFinalCost  Money           `json:"projectedFinalCost"`
	Variance            Money           `json:"variance"`
	DaysRemaining       int             `json:"daysRemaining"`
	ByCategory          []CategorySpend `json:"byCategory"`
}

// ComputeBudgetStats aggregates raw entries into BudgetStats as of today.
// All sums run in integer cents; the single float64 (PercentUsed) exists only
// for the response body and never feeds back into an amount.
func ComputeBudgetStats(in BudgetInputs, today Date) BudgetStats {
	stats := BudgetStats{
		ProjectID:   in.Project.ID,
		ProjectName: in.Project.Name,
		TotalBudget: in.Project.TotalBudget,
	}

	reportDates := make(map[string]Date, len(in.Reports))
	for _, r := range in.Reports {
		reportDates[r.ID] = r.Date
	}

	var spentToday int64
	buckets := map[string]int64{}

	for _, t := range in.Timesheets {
		cost := LaborCost(t.Hours, t.PayRate)
		stats.LaborSpent = stats.LaborSpent.Add(cost)
		buckets[t.CategoryID] += cost.Cents
		if t.Date.SameDay(today) {
			spentToday += cost.Cents
		}
	}
	for _, e := range in.Equipment {
		cost := e.FuelCost.Add(e.RentalCost)
		stats.EquipmentSpent = stats.EquipmentSpent.Add(cost)
		buckets[e.CategoryID] += cost.Cents
		if e.Date.SameDay(today) {
			spentToday += cost.Cents
		}
	}
	for _, s := range in.Subcontractors {
		stats.SubcontractorsSpent = stats.SubcontractorsSpent.Add(s.Cost)
		buckets[s.CategoryID] += s.Cost.Cents
		if s.Date.SameDay(today) {
			spentToday += s.Cost.Cents
		}
	}
	for _, o := range in.Overhead {
		stats.OverheadSpent = stats.OverheadSpent.Add(o.Cost)
		buckets[o.CategoryID] += o.Cost.Cents
		if o.Date.SameDay(today) {
			spentToday += o.Cost.Cents
		}
	}
	for _, m := range in.Materials {
		stats.MaterialsSpent = stats.MaterialsSpent.Add(m.Cost)
		buckets[m.CategoryID] += m.Cost.Cents
		if d, ok := reportDates[m.ReportID]; ok && d.SameDay(today) {
			spentToday += m.Cost.Cents
		}
	}

	stats.TotalSpent = stats.LaborSpent.
		Add(stats.EquipmentSpent).
		Add(stats.SubcontractorsSpent).
		Add(stats.OverheadSpent).
		Add(stats.MaterialsSpent)
	stats.Remaining = stats.TotalBudget.Sub(stats.TotalSpent)
	stats.SpentToday = Money{Cents: spentToday}

	if stats.TotalBudget.Cents > 0 {
		stats.PercentUsed = float64(stats.TotalSpent.Cents) / float64(stats.TotalBudget.Cents) * 100
	}

	stats.PercentComplete = LatestPercentComplete(in.Reports)

	days := in.Project.StartDate.DaysUntil(today)
	if days < 1 {
		days = 1
	}
	stats.DailyBurnRate = Money{Cents: stats.TotalSpent.Cents / int64(days)}

	if stats.PercentComplete == 0 {
		stats.ProjectedFinalCost = stats.TotalBudget
	} else {
		stats.ProjectedFinalCost = Money{Cents: stats.TotalSpent.Cents * 100 / int64(stats.PercentComplete)}
	}
	stats.Variance = stats.ProjectedFinalCost.Sub(stats.TotalBudget)

	if !in.Project.EndDate.IsZero() {
		if left := today.DaysUntil(in.Project.EndDate); left > 0 {
			stats.DaysRemaining = left
		}
	}

	stats.ByCategory = categoryBreakdown(buckets, in.Categories)
	return stats
}

// LatestPercentComplete returns the completion figure from the most recent
// progress report, most recent by report date and then by creation time.
// A project with no reports is 0% complete.
func LatestPercentComplete(reports []ProgressReport) int {
	var latest *ProgressReport
	for i := range reports {
		r := &reports[i]
		if latest == nil {
			latest = r
			continue
		}
		if r.Date.After(latest.Date.Time) {
			latest = r
			continue
		}
		if r.Date.SameDay(latest.Date) && r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return 0
	}
	return latest.PercentComplete
}

// categoryBreakdown resolves bucket keys to category names, folding unknown
// and empty keys into the uncategorized bucket. Named buckets come back
// sorted by name with uncategorized last; empty buckets are dropped.
func categoryBreakdown(buckets map[string]int64, categories []Category) []CategorySpend {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var uncategorized int64
	out := make([]CategorySpend, 0, len(buckets))
	for id, cents := range buckets {
		if cents == 0 {
			continue
		}
		name, ok := names[id]
		if id == "" || !ok {
			uncategorized += cents
			continue
		}
		out = append(out, CategorySpend{CategoryID: id, Name: name, Spent: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if uncategorized > 0 {
		out = append(out, CategorySpend{Name: UncategorizedBucket, Spent: Money{Cents: uncategorized}})
	}
	return out
}
