package payout

import (
	"errors"
)

// Split is the three-way division of a task's value at payout time.
// VLECommission excludes the government fee; the fee is a pass-through cost
// the VLE fronted and is reimbursed alongside the commission.
// AdminCommission is derived for reporting only and never hits a ledger. It
// is negative on VLE leads, where the creator paid the VLE rate up front and
// the fronted government fee is still reimbursed in full.
type Split struct {
	VLECommission   int64 `json:"vleCommission"`
	GovernmentFee   int64 `json:"governmentFee"`
	AdminCommission int64 `json:"adminCommission"`
}

// VLECredit is the amount actually credited to the VLE wallet.
func (s Split) VLECredit() int64 {
	return s.VLECommission + s.GovernmentFee
}

// Compute derives the payout split from the task's charged price and the
// service's fixed rates.
func Compute(totalPaid, vleRate, governmentFee int64) (Split, error) {
	if totalPaid <= 0 {
		return Split{}, errors.New("total paid must be positive")
	}
	if vleRate < 0 || governmentFee < 0 {
		return Split{}, errors.New("rates must not be negative")
	}
	return Split{
		VLECommission:   vleRate,
		GovernmentFee:   governmentFee,
		AdminCommission: totalPaid - vleRate - governmentFee,
	}, nil
}
