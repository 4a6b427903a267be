package metrics

// LaborInput collects what the allocator needs for one period.
type LaborInput struct {
	RecordedLaborCost  float64
	ActualDayWeightSum float64
	ExpectedWorkDays   float64
	ManagerSalary      float64
	Markup             float64
}

// LaborCost is the allocator output.
type LaborCost struct {
	ManagerDailyCost float64
	Total            float64
}

// AllocateLabor adds the pro-rated manager salary to the recorded labor cost and
// applies the markup. The manager share follows weighted days, like revenue does.
func AllocateLabor(in LaborInput) LaborCost {
	daily := safeDiv(in.ManagerSalary, in.ExpectedWorkDays)
	total := (in.RecordedLaborCost + daily*in.ActualDayWeightSum) * in.Markup
	return LaborCost{ManagerDailyCost: daily, Total: total}
}

// safeDiv returns 0 instead of NaN or Inf when the denominator is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
