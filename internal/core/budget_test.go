package core

import (
	"fmt"
	"testing"
	"time"
)

func statsProject(budgetCents int64, start, end Date) Project {
	return Project{
		ID:          "p1",
		Name:        "Via Roma renovation",
		TotalBudget: Money{Cents: budgetCents},
		StartDate:   start,
		EndDate:     end,
	}
}

func TestComputeBudgetStatsEmptyProject(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{Project: statsProject(10_000_000, NewDate(2026, 3, 1), Date{})}

	stats := ComputeBudgetStats(in, today)

	if stats.TotalSpent.Cents != 0 {
		t.Fatalf("TotalSpent = %d, want 0", stats.TotalSpent.Cents)
	}
	if stats.Remaining.Cents != 10_000_000 {
		t.Fatalf("Remaining = %d, want 10000000", stats.Remaining.Cents)
	}
	if stats.PercentUsed != 0 {
		t.Fatalf("PercentUsed = %v, want 0", stats.PercentUsed)
	}
	if stats.PercentComplete != 0 {
		t.Fatalf("PercentComplete = %d, want 0", stats.PercentComplete)
	}
	if stats.ProjectedFinalCost.Cents != 10_000_000 {
		t.Fatalf("ProjectedFinalCost = %d, want budget", stats.ProjectedFinalCost.Cents)
	}
	if stats.Variance.Cents != 0 {
		t.Fatalf("Variance = %d, want 0", stats.Variance.Cents)
	}
	if stats.DailyBurnRate.Cents != 0 {
		t.Fatalf("DailyBurnRate = %d, want 0", stats.DailyBurnRate.Cents)
	}
	if len(stats.ByCategory) != 0 {
		t.Fatalf("ByCategory = %v, want empty", stats.ByCategory)
	}
}

func TestComputeBudgetStatsLaborScenario(t *testing.T) {
	// 100000.00 budget, one 8h timesheet at 25.00/h.
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{
		Project: statsProject(10_000_000, NewDate(2026, 3, 1), Date{}),
		Timesheets: []Timesheet{
			{ID: "t1", ProjectID: "p1", Date: NewDate(2026, 3, 2), Hours: Hours{Hundredths: 800}, PayRate: Money{Cents: 2500}},
		},
	}

	stats := ComputeBudgetStats(in, today)

	if stats.LaborSpent.Cents != 20000 {
		t.Fatalf("LaborSpent = %d, want 20000", stats.LaborSpent.Cents)
	}
	if stats.TotalSpent.Cents != 20000 {
		t.Fatalf("TotalSpent = %d, want 20000", stats.TotalSpent.Cents)
	}
	if stats.PercentUsed != 0.2 {
		t.Fatalf("PercentUsed = %v, want 0.2", stats.PercentUsed)
	}
	if stats.Remaining.Cents != 9_980_000 {
		t.Fatalf("Remaining = %d, want 9980000", stats.Remaining.Cents)
	}
}

func TestComputeBudgetStatsTotalIsSumOfParts(t *testing.T) {
	today := NewDate(2026, 3, 10)
	day := NewDate(2026, 3, 5)
	in := BudgetInputs{
		Project: statsProject(50_000_00, NewDate(2026, 3, 1), Date{}),
		Timesheets: []Timesheet{
			{ID: "t1", Date: day, Hours: Hours{Hundredths: 400}, PayRate: Money{Cents: 2000}},
			{ID: "t2", Date: day, Hours: Hours{Hundredths: 850}, PayRate: Money{Cents: 1850}},
		},
		Equipment: []EquipmentLog{
			{ID: "e1", Date: day, FuelCost: Money{Cents: 4500}, RentalCost: Money{Cents: 30000}},
		},
		Subcontractors: []SubcontractorEntry{
			{ID: "s1", Date: day, Cost: Money{Cents: 120000}},
		},
		Overhead: []OverheadEntry{
			{ID: "o1", Date: day, Cost: Money{Cents: 9900}},
		},
		Reports: []ProgressReport{
			{ID: "r1", Date: day},
		},
		Materials: []Material{
			{ID: "m1", ReportID: "r1", Cost: Money{Cents: 75050}},
		},
	}

	stats := ComputeBudgetStats(in, today)

	sum := stats.LaborSpent.Cents + stats.EquipmentSpent.Cents +
		stats.SubcontractorsSpent.Cents + stats.OverheadSpent.Cents + stats.MaterialsSpent.Cents
	if stats.TotalSpent.Cents != sum {
		t.Fatalf("TotalSpent = %d, parts sum to %d", stats.TotalSpent.Cents, sum)
	}
	if stats.LaborSpent.Cents != 8000+15725 {
		t.Fatalf("LaborSpent = %d, want 23725", stats.LaborSpent.Cents)
	}
	if stats.EquipmentSpent.Cents != 34500 {
		t.Fatalf("EquipmentSpent = %d, want 34500", stats.EquipmentSpent.Cents)
	}
	if stats.Remaining.Cents != 50_000_00-sum {
		t.Fatalf("Remaining = %d, want %d", stats.Remaining.Cents, 50_000_00-sum)
	}
}

func TestComputeBudgetStatsPercentUsedMonotonic(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{Project: statsProject(100_000_00, NewDate(2026, 3, 1), Date{})}

	prev := 0.0
	for i := 0; i < 20; i++ {
		in.Overhead = append(in.Overhead, OverheadEntry{
			ID:   fmt.Sprintf("o%d", i),
			Date: NewDate(2026, 3, 2),
			Cost: Money{Cents: int64(1000 * (i + 1))},
		})
		stats := ComputeBudgetStats(in, today)
		if stats.PercentUsed < prev {
			t.Fatalf("PercentUsed dropped from %v to %v after entry %d", prev, stats.PercentUsed, i)
		}
		prev = stats.PercentUsed
	}
}

func TestComputeBudgetStatsZeroBudget(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{
		Project: statsProject(0, NewDate(2026, 3, 1), Date{}),
		Overhead: []OverheadEntry{
			{ID: "o1", Date: NewDate(2026, 3, 2), Cost: Money{Cents: 5000}},
		},
	}

	stats := ComputeBudgetStats(in, today)

	if stats.PercentUsed != 0 {
		t.Fatalf("PercentUsed with zero budget = %v, want 0", stats.PercentUsed)
	}
	if stats.Remaining.Cents != -5000 {
		t.Fatalf("Remaining = %d, want -5000", stats.Remaining.Cents)
	}
}

func TestComputeBudgetStatsProjection(t *testing.T) {
	// 50000.00 budget, 30000.00 spent, 50% complete.
	today := NewDate(2026, 6, 1)
	in := BudgetInputs{
		Project: statsProject(5_000_000, NewDate(2026, 3, 1), Date{}),
		Subcontractors: []SubcontractorEntry{
			{ID: "s1", Date: NewDate(2026, 4, 1), Cost: Money{Cents: 3_000_000}},
		},
		Reports: []ProgressReport{
			{ID: "r1", Date: NewDate(2026, 5, 20), PercentComplete: 50},
		},
	}

	stats := ComputeBudgetStats(in, today)

	if stats.ProjectedFinalCost.Cents != 6_000_000 {
		t.Fatalf("ProjectedFinalCost = %d, want 6000000", stats.ProjectedFinalCost.Cents)
	}
	if stats.Variance.Cents != 1_000_000 {
		t.Fatalf("Variance = %d, want 1000000", stats.Variance.Cents)
	}
}

func TestComputeBudgetStatsProjectionAtZeroPercent(t *testing.T) {
	today := NewDate(2026, 6, 1)
	in := BudgetInputs{
		Project: statsProject(5_000_000, NewDate(2026, 3, 1), Date{}),
		Overhead: []OverheadEntry{
			{ID: "o1", Date: NewDate(2026, 4, 1), Cost: Money{Cents: 100000}},
		},
		Reports: []ProgressReport{
			{ID: "r1", Date: NewDate(2026, 5, 20), PercentComplete: 0},
		},
	}

	stats := ComputeBudgetStats(in, today)

	if stats.ProjectedFinalCost.Cents != 5_000_000 {
		t.Fatalf("ProjectedFinalCost at 0%% = %d, want budget", stats.ProjectedFinalCost.Cents)
	}
	if stats.Variance.Cents != 0 {
		t.Fatalf("Variance at 0%% = %d, want 0", stats.Variance.Cents)
	}
}

func TestLatestPercentComplete(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		reports []ProgressReport
		want    int
	}{
		{"no reports", nil, 0},
		{
			"latest date wins",
			[]ProgressReport{
				{Date: NewDate(2026, 5, 1), PercentComplete: 40, CreatedAt: base.Add(2 * time.Hour)},
				{Date: NewDate(2026, 5, 3), PercentComplete: 55, CreatedAt: base},
			},
			55,
		},
		{
			"same date, later creation wins",
			[]ProgressReport{
				{Date: NewDate(2026, 5, 3), PercentComplete: 50, CreatedAt: base},
				{Date: NewDate(2026, 5, 3), PercentComplete: 60, CreatedAt: base.Add(time.Minute)},
			},
			60,
		},
		{
			"order of the slice does not matter",
			[]ProgressReport{
				{Date: NewDate(2026, 5, 3), PercentComplete: 60, CreatedAt: base.Add(time.Minute)},
				{Date: NewDate(2026, 5, 3), PercentComplete: 50, CreatedAt: base},
				{Date: NewDate(2026, 5, 1), PercentComplete: 90, CreatedAt: base.Add(time.Hour)},
			},
			60,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LatestPercentComplete(tc.reports); got != tc.want {
				t.Fatalf("LatestPercentComplete() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestComputeBudgetStatsSpentToday(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{
		Project: statsProject(10_000_000, NewDate(2026, 3, 1), Date{}),
		Timesheets: []Timesheet{
			{ID: "t1", Date: today, Hours: Hours{Hundredths: 800}, PayRate: Money{Cents: 2500}},
			{ID: "t2", Date: NewDate(2026, 3, 9), Hours: Hours{Hundredths: 800}, PayRate: Money{Cents: 2500}},
		},
		Equipment: []EquipmentLog{
			{ID: "e1", Date: today, FuelCost: Money{Cents: 1500}},
		},
		Reports: []ProgressReport{
			{ID: "r1", Date: today},
			{ID: "r2", Date: NewDate(2026, 3, 8)},
		},
		Materials: []Material{
			{ID: "m1", ReportID: "r1", Cost: Money{Cents: 3000}},
			{ID: "m2", ReportID: "r2", Cost: Money{Cents: 9999}},
		},
	}

	stats := ComputeBudgetStats(in, today)

	// 20000 labor + 1500 fuel + 3000 material dated today.
	if stats.SpentToday.Cents != 24500 {
		t.Fatalf("SpentToday = %d, want 24500", stats.SpentToday.Cents)
	}
}

func TestComputeBudgetStatsDailyBurnRate(t *testing.T) {
	start := NewDate(2026, 3, 1)
	in := BudgetInputs{
		Project: statsProject(10_000_000, start, Date{}),
		Overhead: []OverheadEntry{
			{ID: "o1", Date: start, Cost: Money{Cents: 10000}},
		},
	}

	// Start day counts as one day, never zero.
	sameDay := ComputeBudgetStats(in, start)
	if sameDay.DailyBurnRate.Cents != 10000 {
		t.Fatalf("DailyBurnRate on start day = %d, want 10000", sameDay.DailyBurnRate.Cents)
	}

	tenDays := ComputeBudgetStats(in, NewDate(2026, 3, 11))
	if tenDays.DailyBurnRate.Cents != 1000 {
		t.Fatalf("DailyBurnRate after 10 days = %d, want 1000", tenDays.DailyBurnRate.Cents)
	}

	beforeStart := ComputeBudgetStats(in, NewDate(2026, 2, 20))
	if beforeStart.DailyBurnRate.Cents != 10000 {
		t.Fatalf("DailyBurnRate before start = %d, want 10000", beforeStart.DailyBurnRate.Cents)
	}
}

func TestComputeBudgetStatsDaysRemaining(t *testing.T) {
	start := NewDate(2026, 3, 1)
	cases := []struct {
		name  string
		end   Date
		today Date
		want  int
	}{
		{"no end date", Date{}, NewDate(2026, 3, 10), 0},
		{"end in the future", NewDate(2026, 3, 20), NewDate(2026, 3, 10), 10},
		{"end today", NewDate(2026, 3, 10), NewDate(2026, 3, 10), 0},
		{"end in the past", NewDate(2026, 3, 5), NewDate(2026, 3, 10), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := BudgetInputs{Project: statsProject(100000, start, tc.end)}
			stats := ComputeBudgetStats(in, tc.today)
			if stats.DaysRemaining != tc.want {
				t.Fatalf("DaysRemaining = %d, want %d", stats.DaysRemaining, tc.want)
			}
		})
	}
}

func TestComputeBudgetStatsCategoryBreakdown(t *testing.T) {
	today := NewDate(2026, 3, 10)
	day := NewDate(2026, 3, 5)
	in := BudgetInputs{
		Project: statsProject(10_000_000, NewDate(2026, 3, 1), Date{}),
		Categories: []Category{
			{ID: "c-fuel", ProjectID: "p1", Name: "Fuel"},
			{ID: "c-demo", ProjectID: "p1", Name: "Demolition"},
		},
		Timesheets: []Timesheet{
			{ID: "t1", Date: day, Hours: Hours{Hundredths: 400}, PayRate: Money{Cents: 2000}, CategoryID: "c-demo"},
		},
		Equipment: []EquipmentLog{
			{ID: "e1", Date: day, FuelCost: Money{Cents: 4500}, CategoryID: "c-fuel"},
			{ID: "e2", Date: day, RentalCost: Money{Cents: 20000}}, // no category
		},
		Overhead: []OverheadEntry{
			{ID: "o1", Date: day, Cost: Money{Cents: 100}, CategoryID: "c-gone"}, // dangling reference
		},
	}

	stats := ComputeBudgetStats(in, today)

	if len(stats.ByCategory) != 3 {
		t.Fatalf("ByCategory has %d buckets, want 3: %+v", len(stats.ByCategory), stats.ByCategory)
	}
	if stats.ByCategory[0].Name != "Demolition" || stats.ByCategory[0].Spent.Cents != 8000 {
		t.Fatalf("bucket 0 = %+v, want Demolition 8000", stats.ByCategory[0])
	}
	if stats.ByCategory[1].Name != "Fuel" || stats.ByCategory[1].Spent.Cents != 4500 {
		t.Fatalf("bucket 1 = %+v, want Fuel 4500", stats.ByCategory[1])
	}
	last := stats.ByCategory[2]
	if last.Name != UncategorizedBucket || last.Spent.Cents != 20100 {
		t.Fatalf("bucket 2 = %+v, want uncategorized 20100", last)
	}
}

func TestComputeBudgetStatsOverspent(t *testing.T) {
	today := NewDate(2026, 3, 10)
	in := BudgetInputs{
		Project: statsProject(100000, NewDate(2026, 3, 1), Date{}),
		Subcontractors: []SubcontractorEntry{
			{ID: "s1", Date: NewDate(2026, 3, 2), Cost: Money{Cents: 150000}},
		},
	}

	stats := ComputeBudgetStats(in, today)

	if stats.Remaining.Cents != -50000 {
		t.Fatalf("Remaining = %d, want -50000", stats.Remaining.Cents)
	}
	if stats.PercentUsed != 150 {
		t.Fatalf("PercentUsed = %v, want 150", stats.PercentUsed)
	}
}
