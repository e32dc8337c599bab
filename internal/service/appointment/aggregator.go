package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
)

const (
	// WalkInName stands in for the customer name on walk-in appointments.
	WalkInName = "Walk-in Customer"

	displayLayout = "1/2/2006 03:04 PM"
)

var hundred = decimal.NewFromInt(100)

// Options carries everything ComputeDerivedFields needs besides the record.
type Options struct {
	Now          time.Time
	TaxRate      decimal.Decimal
	Location     *time.Location
	CustomerName string
	Operation    model.Operation
	Actor        *uuid.UUID
}

// ComputeDerivedFields returns apt with display name, duration, pricing,
// payment balance, progress timestamps and audit fields recomputed.
// The services of the input are never modified.
func ComputeDerivedFields(apt model.Appointment, opts Options) model.Appointment {
	out := apt

	out.DisplayName = displayName(apt, opts)
	out.Scheduling.TotalDuration = TotalDuration(apt.Services)
	out.Pricing = ComputePricing(apt.Services, apt.Pricing, opts.TaxRate)
	out.Payment.RemainingBalance = out.Pricing.TotalPrice.Sub(apt.Payment.PaidAmount)
	out.Payment.Status = DerivePaymentStatus(out.Payment, out.Pricing.TotalPrice)
	out.Progress = stampProgress(apt.Progress, apt.Status, opts.Now)

	if opts.Actor != nil {
		actor := *opts.Actor
		switch opts.Operation {
		case model.OperationCreate:
			out.CreatedBy = &actor
		case model.OperationUpdate:
			out.UpdatedBy = &actor
		}
	}

	return out
}

func displayName(apt model.Appointment, opts Options) string {
	if apt.Scheduling.DateTime == nil || (apt.Customer == nil && apt.WalkIn == nil) {
		return apt.DisplayName
	}

	name := opts.CustomerName
	if apt.IsWalkIn() || name == "" {
		name = WalkInName
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s - %s", name, apt.Scheduling.DateTime.In(loc).Format(displayLayout))
}

// TotalDuration sums service durations in minutes.
func TotalDuration(services []model.ServiceLine) int {
	total := 0
	for _, s := range services {
		total += s.Duration
	}
	return total
}

// Subtotal sums service prices.
func Subtotal(services []model.ServiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}

// DiscountAmount resolves a fixed or percentage discount against subtotal.
// A discount of any other type is ignored.
func DiscountAmount(subtotal decimal.Decimal, d *model.Discount) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	switch d.Type {
	case model.DiscountTypePercentage:
		return subtotal.Mul(d.Amount).Div(hundred)
	case model.DiscountTypeFixed:
		return d.Amount
	default:
		return decimal.Zero
	}
}

// ComputePricing derives subtotal, tax and total. Tip and discount are kept.
func ComputePricing(services []model.ServiceLine, current model.Pricing, taxRate decimal.Decimal) model.Pricing {
	p := current
	p.Subtotal = Subtotal(services)

	discount := DiscountAmount(p.Subtotal, current.Discount)
	taxable := p.Subtotal.Sub(discount)
	p.Tax = taxable.Mul(taxRate).Round(2)
	p.TotalPrice = taxable.Add(p.Tax).Add(current.Tip)

	return p
}

// DerivePaymentStatus classifies how much of total has been paid.
// Refunded, failed and disputed are set explicitly and left alone.
func DerivePaymentStatus(p model.Payment, total decimal.Decimal) model.PaymentStatus {
	switch p.Status {
	case model.PaymentStatusRefunded, model.PaymentStatusFailed, model.PaymentStatusDisputed:
		return p.Status
	}

	switch {
	case !p.PaidAmount.IsPositive():
		return model.PaymentStatusPending
	case p.PaidAmount.GreaterThanOrEqual(total):
		return model.PaymentStatusPaidFull
	case p.DepositAmount.IsPositive() && p.PaidAmount.Equal(p.DepositAmount):
		return model.PaymentStatusDepositPaid
	default:
		return model.PaymentStatusPartial
	}
}

func stampProgress(p model.Progress, status model.AppointmentStatus, now time.Time) model.Progress {
	var slot **time.Time
	switch status {
	case model.AppointmentStatusCheckedIn:
		slot = &p.CheckedInAt
	case model.AppointmentStatusInProgress:
		slot = &p.ServiceStartedAt
	case model.AppointmentStatusServiceComplete:
		slot = &p.ServiceCompletedAt
	case model.AppointmentStatusCompleted:
		slot = &p.CheckedOutAt
	default:
		return p
	}

	if *slot == nil {
		*slot = model.TimePtr(now)
	}
	return p
}
