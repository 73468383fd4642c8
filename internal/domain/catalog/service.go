package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/user"
)

var ErrNoPriceExpression = errors.New("service has no price expression")

// Service is one catalog entry. Rates and the government fee are fixed in
// paise; variable-rate services are priced by an admin per task.
type Service struct {
	ID              int64     `json:"id"`
	ServiceID       uuid.UUID `json:"serviceId"`
	Name            string    `json:"name"`
	CustomerRate    int64     `json:"customerRate"`
	VLERate         int64     `json:"vleRate"`
	GovernmentFee   int64     `json:"governmentFee"`
	IsVariable      bool      `json:"isVariable"`
	PriceExpression *string   `json:"priceExpression,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RateFor returns the upfront charge for a creator role: customers pay the
// customer rate, VLE leads pay the VLE rate.
func (s *Service) RateFor(role user.Role) int64 {
	if role == user.RoleVLE {
		return s.VLERate
	}
	return s.CustomerRate
}

// SuggestPrice evaluates the service's price expression against the given
// parameters (page counts, urgency flags and similar). Used as an admin aid
// when pricing variable-rate tasks; the admin-entered price is what binds.
func (s *Service) SuggestPrice(params map[string]interface{}) (int64, error) {
	if s.PriceExpression == nil || *s.PriceExpression == "" {
		return 0, ErrNoPriceExpression
	}
	expr, err := govaluate.NewEvaluableExpression(*s.PriceExpression)
	if err != nil {
		return 0, fmt.Errorf("invalid price expression: %w", err)
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return 0, err
	}
	f, ok := result.(float64)
	if !ok {
		return 0, errors.New("price expression did not evaluate to a number")
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("price expression produced an invalid amount")
	}
	return int64(math.Round(f)), nil
}
