package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/user"
)

func TestRateFor(t *testing.T) {
	svc := &Service{CustomerRate: 500, VLERate: 200}
	assert.Equal(t, int64(500), svc.RateFor(user.RoleCustomer))
	assert.Equal(t, int64(200), svc.RateFor(user.RoleVLE))
	assert.Equal(t, int64(500), svc.RateFor(user.RoleAdmin))
}

func TestSuggestPrice(t *testing.T) {
	expr := "base + pages * 50"
	svc := &Service{PriceExpression: &expr}

	price, err := svc.SuggestPrice(map[string]interface{}{"base": 300.0, "pages": 4.0})
	require.NoError(t, err)
	assert.Equal(t, int64(500), price)
}

func TestSuggestPriceNoExpression(t *testing.T) {
	svc := &Service{}
	_, err := svc.SuggestPrice(nil)
	require.ErrorIs(t, err, ErrNoPriceExpression)

	empty := ""
	svc.PriceExpression = &empty
	_, err = svc.SuggestPrice(nil)
	require.ErrorIs(t, err, ErrNoPriceExpression)
}

func TestSuggestPriceRejectsBadResults(t *testing.T) {
	tests := []struct {
		name string
		expr string
		env  map[string]interface{}
	}{
		{"negative", "-100", nil},
		{"non numeric", "'free'", nil},
		{"missing parameter", "pages * 50", map[string]interface{}{}},
		{"unparseable", "base +* 2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{PriceExpression: &tt.expr}
			_, err := svc.SuggestPrice(tt.env)
			require.Error(t, err)
		})
	}
}
