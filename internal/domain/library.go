package domain

import (
	"errors"
	"fmt"
)

// Library - backend-owned library record as projected into libadmin.
//
// OwnerID and Rating are only present on single-record fetches.
type Library struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	DailyRate   Decimal  `json:"dailyRate"`
	OverdueRate Decimal  `json:"overdueRate"`
	Currency    Currency `json:"currency"`
	OwnerID     string   `json:"ownerId,omitempty"`
	Rating      *int64   `json:"rating,omitempty"`
}

// Library form field names, as the backend expects them.
const (
	FieldName        = "name"
	FieldAddress     = "address"
	FieldDailyRate   = "dailyRate"
	FieldOverdueRate = "overdueRate"
	FieldCurrency    = "currency"
	FieldOwnerID     = "ownerId"
	FieldRating      = "rating"
)

// Validate reports whether the record is fit for submission: both rates
// parse and are non-negative, and the currency is supported.
func (l Library) Validate() error {
	var errs []error
	rates := []struct {
		field string
		rate  Decimal
	}{
		{FieldDailyRate, l.DailyRate},
		{FieldOverdueRate, l.OverdueRate},
	}
	for _, r := range rates {
		field := r.field
		f, err := r.rate.Float()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			continue
		}
		if f < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", field))
		}
	}
	if !l.Currency.Valid() {
		errs = append(errs, fmt.Errorf("%s: unsupported currency %q", FieldCurrency, l.Currency))
	}
	return errors.Join(errs...)
}
