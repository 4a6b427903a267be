package metrics

import "github.com/google/uuid"

// Fallback constants used when neither the goal nor the business carries a value.
const (
	DefaultVATPercentage = 18.0
	DefaultMarkup        = 1.0
)

// ValueSource records which tier of the fallback chain produced a value.
type ValueSource string

const (
	// FromGoal means the monthly goal row supplied the value.
	FromGoal ValueSource = "goal"
	// FromBusinessDefault means the business defaults supplied the value.
	FromBusinessDefault ValueSource = "business_default"
	// FromConstant means a documented constant supplied the value.
	FromConstant ValueSource = "constant"
)

// Resolved is a parameter value tagged with its source.
type Resolved struct {
	Value  float64
	Source ValueSource
}

// IsSet reports whether a target was configured. A zero target means "no target".
func (r Resolved) IsSet() bool {
	return r.Value != 0
}

// GoalResolver is the single place that applies goal -> business default -> constant.
type GoalResolver struct {
	goal     *GoalRow
	defaults BusinessDefaults
}

// NewGoalResolver builds a resolver. goal may be nil.
func NewGoalResolver(goal *GoalRow, defaults BusinessDefaults) GoalResolver {
	return GoalResolver{goal: goal, defaults: defaults}
}

func resolve(goal, fallback *float64, constant float64) Resolved {
	if goal != nil {
		return Resolved{Value: *goal, Source: FromGoal}
	}
	if fallback != nil {
		return Resolved{Value: *fallback, Source: FromBusinessDefault}
	}
	return Resolved{Value: constant, Source: FromConstant}
}

func (r GoalResolver) goalField(pick func(*GoalRow) *float64) *float64 {
	if r.goal == nil {
		return nil
	}
	return pick(r.goal)
}

// VATRate returns the VAT rate as a fraction (0.18 for 18%).
func (r GoalResolver) VATRate() Resolved {
	res := resolve(
		r.goalField(func(g *GoalRow) *float64 { return g.VATPercentage }),
		r.defaults.VATPercentage,
		DefaultVATPercentage,
	)
	res.Value /= 100
	return res
}

// Markup returns the labor markup multiplier.
func (r GoalResolver) Markup() Resolved {
	return resolve(
		r.goalField(func(g *GoalRow) *float64 { return g.MarkupMultiplier }),
		r.defaults.MarkupMultiplier,
		DefaultMarkup,
	)
}

// RevenueTarget returns the monthly revenue target, 0 when unset.
func (r GoalResolver) RevenueTarget() Resolved {
	return resolve(
		r.goalField(func(g *GoalRow) *float64 { return g.RevenueTarget }),
		r.defaults.RevenueTarget,
		0,
	)
}

// CategoryTarget returns the target percentage of revenue for a cost category.
func (r GoalResolver) CategoryTarget(category ExpenseCategory) Resolved {
	switch category {
	case CategoryLabor:
		return resolve(
			r.goalField(func(g *GoalRow) *float64 { return g.LaborTargetPct }),
			r.defaults.LaborTargetPct, 0)
	case CategoryGoods:
		return resolve(
			r.goalField(func(g *GoalRow) *float64 { return g.FoodTargetPct }),
			r.defaults.FoodTargetPct, 0)
	case CategoryCurrent:
		return resolve(
			r.goalField(func(g *GoalRow) *float64 { return g.CurrentTargetPct }),
			r.defaults.CurrentTargetPct, 0)
	default:
		return Resolved{Source: FromConstant}
	}
}

// ProductTarget returns the target percentage for a managed product. The product's own
// configured target stands in for the business default tier.
func (r GoalResolver) ProductTarget(productID uuid.UUID, productDefault *float64) Resolved {
	var fromGoal *float64
	if r.goal != nil {
		if v, ok := r.goal.ProductTargetPct[productID]; ok {
			fromGoal = &v
		}
	}
	return resolve(fromGoal, productDefault, 0)
}
