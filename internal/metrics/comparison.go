package metrics

// Comparison is the revenue of a comparison period and the change against it.
type Comparison struct {
	Period           Period
	BeforeVAT        float64
	ExpectedWorkDays float64
	Pace             float64
	ChangePct        float64
}

// Compare recomputes the pace of a comparison period on its own calendar and derives the
// percentage change of the current pace against it. A comparison period without revenue
// yields a change of 0.
func Compare(records []DailyRecord, period Period, slots []ScheduleSlot, vatRate, currentPace float64) Comparison {
	totals := sumDaily(records)
	expected := ExpectedWorkDays(slots, period)
	before := IncomeBeforeVAT(totals.Gross, vatRate)
	pace := safeDiv(before, totals.WeightSum) * expected
	cmp := Comparison{
		Period:           period,
		BeforeVAT:        before,
		ExpectedWorkDays: expected,
		Pace:             pace,
	}
	if pace > 0 {
		cmp.ChangePct = (currentPace/pace - 1) * 100
	}
	return cmp
}
