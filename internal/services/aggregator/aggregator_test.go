package aggregator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
)

func record(kind models.RecordKind, amount float64, category string, year int, month time.Month, day int) models.Record {
	return models.Record{
		ID:         category,
		Kind:       kind,
		Amount:     decimal.NewFromFloat(amount),
		Category:   category,
		OccurredOn: calendar.New(year, month, day),
	}
}

func TestAggregateByMonthShape(t *testing.T) {
	records := models.NewRecordSet([]models.Record{
		record(models.Expense, 120, "groceries", 2024, time.March, 5),
		record(models.Expense, 80, "dining", 2024, time.March, 20),
		record(models.Income, 2500, "salary", 2024, time.March, 1),
		record(models.Expense, 90, "groceries", 2024, time.July, 9),
		// Records outside the target year must not leak in.
		record(models.Expense, 999, "groceries", 2023, time.March, 5),
	})

	months := New().AggregateByMonth(records, 2024)

	if len(months) != 12 {
		t.Fatalf("got %d aggregates, want 12", len(months))
	}
	for i, m := range months {
		if m.Month != time.Month(i+1) || m.Year != 2024 {
			t.Errorf("aggregates[%d] is %04d-%02d, want 2024-%02d", i, m.Year, m.Month, i+1)
		}
	}

	march := months[2]
	if !march.TotalExpense.Equal(decimal.NewFromInt(200)) {
		t.Errorf("March expense = %s, want 200", march.TotalExpense)
	}
	if !march.TotalIncome.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("March income = %s, want 2500", march.TotalIncome)
	}
	if !march.NetFlow.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("March net flow = %s, want 2300", march.NetFlow)
	}
	if march.PeriodKey != "2024-03" {
		t.Errorf("PeriodKey = %s, want 2024-03", march.PeriodKey)
	}
	if march.TopCategory != "groceries" {
		t.Errorf("TopCategory = %s, want groceries", march.TopCategory)
	}

	// Sparse months are zero-filled, not missing.
	empty := months[0]
	if !empty.TotalExpense.IsZero() || !empty.TotalIncome.IsZero() {
		t.Errorf("January should be zero-filled, got expense %s income %s", empty.TotalExpense, empty.TotalIncome)
	}
}

func TestAggregateByMonthDeltas(t *testing.T) {
	records := models.NewRecordSet([]models.Record{
		record(models.Expense, 100, "groceries", 2024, time.January, 5),
		record(models.Expense, 150, "groceries", 2024, time.February, 5),
	})

	months := New().AggregateByMonth(records, 2024)

	if months[0].DeltaFromPrevious != nil {
		t.Error("January must not carry a delta")
	}
	feb := months[1].DeltaFromPrevious
	if feb == nil {
		t.Fatal("February should carry a delta against January")
	}
	if !feb.Expense.Equal(decimal.NewFromInt(50)) {
		t.Errorf("February expense delta = %s, want 50", feb.Expense)
	}
	if feb.ExpensePercent != 50.0 {
		t.Errorf("February expense percent = %v, want 50.0", feb.ExpensePercent)
	}

	mar := months[2].DeltaFromPrevious
	if mar == nil {
		t.Fatal("March should carry a delta against February")
	}
	if !mar.Expense.Equal(decimal.NewFromInt(-150)) {
		t.Errorf("March expense delta = %s, want -150", mar.Expense)
	}
}

func TestAggregateByYear(t *testing.T) {
	var recs []models.Record
	// 100/month in H1, 200/month in H2: a clearly increasing year.
	for m := time.January; m <= time.June; m++ {
		recs = append(recs, record(models.Expense, 100, "groceries", 2024, m, 10))
	}
	for m := time.July; m <= time.December; m++ {
		recs = append(recs, record(models.Expense, 200, "groceries", 2024, m, 10))
	}
	recs = append(recs, record(models.Expense, 300, "dining", 2024, time.December, 20))
	recs = append(recs, record(models.Income, 2500, "salary", 2024, time.April, 1))

	summary := New().AggregateByYear(models.NewRecordSet(recs), 2024)

	if !summary.TotalExpense.Equal(decimal.NewFromInt(2100)) {
		t.Errorf("TotalExpense = %s, want 2100", summary.TotalExpense)
	}
	if summary.Trend != models.TrendIncreasing {
		t.Errorf("Trend = %s, want increasing", summary.Trend)
	}
	if summary.HighestExpenseMonth != time.December {
		t.Errorf("HighestExpenseMonth = %s, want December", summary.HighestExpenseMonth)
	}
	if summary.HighestIncomeMonth != time.April {
		t.Errorf("HighestIncomeMonth = %s, want April", summary.HighestIncomeMonth)
	}
	if !summary.NetFlow.Equal(decimal.NewFromInt(400)) {
		t.Errorf("NetFlow = %s, want 400", summary.NetFlow)
	}
}

func TestHalfYearTrendStableBand(t *testing.T) {
	var recs []models.Record
	for m := time.January; m <= time.June; m++ {
		recs = append(recs, record(models.Expense, 100, "groceries", 2024, m, 10))
	}
	// Second half 3% higher: inside the +/-5% band.
	for m := time.July; m <= time.December; m++ {
		recs = append(recs, record(models.Expense, 103, "groceries", 2024, m, 10))
	}

	summary := New().AggregateByYear(models.NewRecordSet(recs), 2024)
	if summary.Trend != models.TrendStable {
		t.Errorf("Trend = %s, want stable within the 5%% band", summary.Trend)
	}
}

func TestAggregateEmptyYear(t *testing.T) {
	summary := New().AggregateByYear(models.NewRecordSet(nil), 2024)

	if len(summary.Months) != 12 {
		t.Fatalf("got %d months, want 12", len(summary.Months))
	}
	if summary.Trend != models.TrendStable {
		t.Errorf("Trend = %s, want stable for an empty year", summary.Trend)
	}
	if !summary.TotalExpense.IsZero() || !summary.TotalIncome.IsZero() {
		t.Error("empty year should have zero totals")
	}
}
