package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
)

var taxRate = decimal.RequireFromString("0.085")

func line(minutes int, price string) model.ServiceLine {
	return model.ServiceLine{
		Service:  uuid.New(),
		Duration: minutes,
		Price:    decimal.RequireFromString(price),
	}
}

func TestComputeDerivedFields_Sums(t *testing.T) {
	tests := []struct {
		name     string
		services []model.ServiceLine
		duration int
		subtotal string
	}{
		{"empty services", nil, 0, "0"},
		{"single service", []model.ServiceLine{line(30, "25.00")}, 30, "25"},
		{"several services", []model.ServiceLine{line(30, "25.50"), line(45, "40"), line(15, "10.25")}, 90, "75.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ComputeDerivedFields(model.Appointment{Services: tt.services}, Options{TaxRate: taxRate})

			assert.Equal(t, tt.duration, out.Scheduling.TotalDuration)
			assert.True(t, decimal.RequireFromString(tt.subtotal).Equal(out.Pricing.Subtotal),
				"subtotal %s", out.Pricing.Subtotal)
		})
	}
}

func TestComputeDerivedFields_Pricing(t *testing.T) {
	t.Run("percentage discount", func(t *testing.T) {
		apt := model.Appointment{
			Services: []model.ServiceLine{line(60, "100")},
			Pricing: model.Pricing{
				Discount: &model.Discount{Amount: decimal.NewFromInt(10), Type: model.DiscountTypePercentage},
				Tip:      decimal.RequireFromString("5.00"),
			},
		}

		out := ComputeDerivedFields(apt, Options{TaxRate: taxRate})

		assert.True(t, decimal.RequireFromString("7.65").Equal(out.Pricing.Tax), "tax %s", out.Pricing.Tax)
		assert.True(t, decimal.RequireFromString("102.65").Equal(out.Pricing.TotalPrice), "total %s", out.Pricing.TotalPrice)
	})

	t.Run("fixed discount without tip", func(t *testing.T) {
		apt := model.Appointment{
			Services: []model.ServiceLine{line(60, "100")},
			Pricing: model.Pricing{
				Discount: &model.Discount{Amount: decimal.NewFromInt(10), Type: model.DiscountTypeFixed},
			},
		}

		out := ComputeDerivedFields(apt, Options{TaxRate: taxRate})

		assert.True(t, decimal.RequireFromString("97.65").Equal(out.Pricing.TotalPrice))
	})

	t.Run("unknown discount type is not applied", func(t *testing.T) {
		apt := model.Appointment{
			Services: []model.ServiceLine{line(60, "100")},
			Pricing: model.Pricing{
				Discount: &model.Discount{Amount: decimal.NewFromInt(150), Type: "percent"},
			},
		}

		out := ComputeDerivedFields(apt, Options{TaxRate: taxRate})

		assert.True(t, decimal.RequireFromString("8.5").Equal(out.Pricing.Tax), "tax %s", out.Pricing.Tax)
		assert.True(t, decimal.RequireFromString("108.5").Equal(out.Pricing.TotalPrice), "total %s", out.Pricing.TotalPrice)
	})

	t.Run("tax rounds to cents", func(t *testing.T) {
		apt := model.Appointment{Services: []model.ServiceLine{line(20, "33.33")}}

		out := ComputeDerivedFields(apt, Options{TaxRate: taxRate})

		// 33.33 * 0.085 = 2.83305
		assert.True(t, decimal.RequireFromString("2.83").Equal(out.Pricing.Tax))
	})

	t.Run("overpayment leaves negative balance", func(t *testing.T) {
		apt := model.Appointment{
			Services: []model.ServiceLine{line(20, "10")},
			Payment:  model.Payment{PaidAmount: decimal.NewFromInt(20)},
		}

		out := ComputeDerivedFields(apt, Options{TaxRate: taxRate})

		assert.True(t, decimal.RequireFromString("-9.15").Equal(out.Payment.RemainingBalance))
		assert.Equal(t, model.PaymentStatusPaidFull, out.Payment.Status)
	})
}

func TestComputeDerivedFields_DoesNotMutateServices(t *testing.T) {
	services := []model.ServiceLine{line(30, "25"), line(30, "35")}
	snapshot := append([]model.ServiceLine(nil), services...)

	ComputeDerivedFields(model.Appointment{Services: services}, Options{TaxRate: taxRate})

	assert.Equal(t, snapshot, services)
}

func TestComputeDerivedFields_ProgressIsStampedOnce(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(30 * time.Minute)

	apt := model.Appointment{Status: model.AppointmentStatusCheckedIn}
	saved := ComputeDerivedFields(apt, Options{Now: first})
	require.NotNil(t, saved.Progress.CheckedInAt)

	resaved := ComputeDerivedFields(saved, Options{Now: later})

	assert.True(t, first.Equal(*resaved.Progress.CheckedInAt))
	assert.Nil(t, resaved.Progress.ServiceStartedAt)
}

func TestComputeDerivedFields_ProgressSlots(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		status model.AppointmentStatus
		get    func(model.Progress) *time.Time
	}{
		{model.AppointmentStatusCheckedIn, func(p model.Progress) *time.Time { return p.CheckedInAt }},
		{model.AppointmentStatusInProgress, func(p model.Progress) *time.Time { return p.ServiceStartedAt }},
		{model.AppointmentStatusServiceComplete, func(p model.Progress) *time.Time { return p.ServiceCompletedAt }},
		{model.AppointmentStatusCompleted, func(p model.Progress) *time.Time { return p.CheckedOutAt }},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			out := ComputeDerivedFields(model.Appointment{Status: tt.status}, Options{Now: now})
			require.NotNil(t, tt.get(out.Progress))
			assert.True(t, now.Equal(*tt.get(out.Progress)))
		})
	}

	out := ComputeDerivedFields(model.Appointment{Status: model.AppointmentStatusConfirmed}, Options{Now: now})
	assert.Equal(t, model.Progress{}, out.Progress)
}

func TestComputeDerivedFields_DisplayName(t *testing.T) {
	at := time.Date(2024, 7, 4, 14, 5, 0, 0, time.UTC)
	customer := uuid.New()

	t.Run("booked customer", func(t *testing.T) {
		apt := model.Appointment{Customer: &customer, Scheduling: model.Scheduling{DateTime: &at}}
		out := ComputeDerivedFields(apt, Options{CustomerName: "Jordan Lee"})
		assert.Equal(t, "Jordan Lee - 7/4/2024 02:05 PM", out.DisplayName)
	})

	t.Run("walk-in", func(t *testing.T) {
		apt := model.Appointment{WalkIn: &model.WalkInCustomer{Phone: "555"}, Scheduling: model.Scheduling{DateTime: &at}}
		out := ComputeDerivedFields(apt, Options{})
		assert.Equal(t, "Walk-in Customer - 7/4/2024 02:05 PM", out.DisplayName)
	})

	t.Run("configured timezone", func(t *testing.T) {
		loc := time.FixedZone("EST", -5*3600)
		apt := model.Appointment{Customer: &customer, Scheduling: model.Scheduling{DateTime: &at}}
		out := ComputeDerivedFields(apt, Options{CustomerName: "Jordan Lee", Location: loc})
		assert.Equal(t, "Jordan Lee - 7/4/2024 09:05 AM", out.DisplayName)
	})

	t.Run("missing date keeps existing name", func(t *testing.T) {
		apt := model.Appointment{Customer: &customer, DisplayName: "kept"}
		out := ComputeDerivedFields(apt, Options{CustomerName: "Jordan Lee"})
		assert.Equal(t, "kept", out.DisplayName)
	})
}

func TestComputeDerivedFields_Audit(t *testing.T) {
	actor := uuid.New()

	created := ComputeDerivedFields(model.Appointment{}, Options{Operation: model.OperationCreate, Actor: &actor})
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, actor, *created.CreatedBy)
	assert.Nil(t, created.UpdatedBy)

	editor := uuid.New()
	updated := ComputeDerivedFields(created, Options{Operation: model.OperationUpdate, Actor: &editor})
	assert.Equal(t, actor, *updated.CreatedBy)
	assert.Equal(t, editor, *updated.UpdatedBy)
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(100)
	d := decimal.NewFromInt

	tests := []struct {
		name    string
		payment model.Payment
		want    model.PaymentStatus
	}{
		{"nothing paid", model.Payment{}, model.PaymentStatusPending},
		{"deposit only", model.Payment{DepositAmount: d(20), PaidAmount: d(20)}, model.PaymentStatusDepositPaid},
		{"partial", model.Payment{DepositAmount: d(20), PaidAmount: d(50)}, model.PaymentStatusPartial},
		{"full", model.Payment{PaidAmount: d(100)}, model.PaymentStatusPaidFull},
		{"refunded kept", model.Payment{Status: model.PaymentStatusRefunded, PaidAmount: d(100)}, model.PaymentStatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.payment, total))
		})
	}
}
