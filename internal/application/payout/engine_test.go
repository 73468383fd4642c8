package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		totalPaid int64
		vleRate   int64
		fee       int64
		want      Split
		wantErr   bool
	}{
		{
			name:      "standard split",
			totalPaid: 500, vleRate: 200, fee: 50,
			want: Split{VLECommission: 200, GovernmentFee: 50, AdminCommission: 250},
		},
		{
			name:      "zero admin margin",
			totalPaid: 250, vleRate: 200, fee: 50,
			want: Split{VLECommission: 200, GovernmentFee: 50, AdminCommission: 0},
		},
		{
			// VLE lead: the creator paid the VLE rate up front, so the
			// reimbursed government fee pushes the platform margin negative.
			name:      "negative admin margin on lead",
			totalPaid: 200, vleRate: 200, fee: 50,
			want: Split{VLECommission: 200, GovernmentFee: 50, AdminCommission: -50},
		},
		{
			name:      "zero total",
			totalPaid: 0, vleRate: 0, fee: 0,
			wantErr: true,
		},
		{
			name:      "negative rate",
			totalPaid: 500, vleRate: -1, fee: 0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.totalPaid, tt.vleRate, tt.fee)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.totalPaid, got.VLECredit()+got.AdminCommission, "split must conserve the total")
		})
	}
}
