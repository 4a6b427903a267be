package metrics

// DefaultExpectedWorkDays is used when a business has no weekly schedule.
const DefaultExpectedWorkDays = 22.0

// ExpectedWorkDays projects the weekly schedule onto the calendar of the period.
// Every day of the month contributes the weight of its weekday slot.
func ExpectedWorkDays(slots []ScheduleSlot, period Period) float64 {
	if len(slots) == 0 {
		return DefaultExpectedWorkDays
	}
	var weights [7]float64
	for _, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			continue
		}
		weights[slot.DayOfWeek] = slot.DayFactor
	}
	var total float64
	day := period.Start()
	end := period.End()
	for day.Before(end) {
		total += weights[int(day.Weekday())]
		day = day.AddDate(0, 0, 1)
	}
	return total
}
