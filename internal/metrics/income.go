package metrics

import (
	"sort"

	"github.com/google/uuid"
)

// OriginTotals aggregates income for one origin tag.
type OriginTotals struct {
	Total         float64
	Orders        float64
	AverageTicket float64
}

// SourceTotals aggregates income for one income source.
type SourceTotals struct {
	SourceID      uuid.UUID
	Name          string
	Origin        IncomeOrigin
	Total         float64
	Orders        float64
	AverageTicket float64
}

// IncomeBreakdown is reported next to, not inside, the cost KPIs.
type IncomeBreakdown struct {
	Private  OriginTotals
	Business OriginTotals
	Sources  []SourceTotals
}

// BreakdownIncome sums amounts and orders per source and per origin tag.
func BreakdownIncome(lines []IncomeLine) IncomeBreakdown {
	var out IncomeBreakdown
	bySource := make(map[uuid.UUID]*SourceTotals)
	for _, line := range lines {
		src, ok := bySource[line.SourceID]
		if !ok {
			src = &SourceTotals{SourceID: line.SourceID, Name: line.SourceName, Origin: line.Origin}
			bySource[line.SourceID] = src
		}
		src.Total += line.Amount
		src.Orders += line.OrdersCount

		switch line.Origin {
		case OriginPrivate:
			out.Private.Total += line.Amount
			out.Private.Orders += line.OrdersCount
		case OriginBusiness:
			out.Business.Total += line.Amount
			out.Business.Orders += line.OrdersCount
		}
	}
	out.Private.AverageTicket = safeDiv(out.Private.Total, out.Private.Orders)
	out.Business.AverageTicket = safeDiv(out.Business.Total, out.Business.Orders)

	out.Sources = make([]SourceTotals, 0, len(bySource))
	for _, src := range bySource {
		src.AverageTicket = safeDiv(src.Total, src.Orders)
		out.Sources = append(out.Sources, *src)
	}
	sort.Slice(out.Sources, func(i, j int) bool {
		if out.Sources[i].Name != out.Sources[j].Name {
			return out.Sources[i].Name < out.Sources[j].Name
		}
		return out.Sources[i].SourceID.String() < out.Sources[j].SourceID.String()
	})
	return out
}
