package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled       AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed       AppointmentStatus = "confirmed"
	AppointmentStatusCheckedIn       AppointmentStatus = "checked_in"
	AppointmentStatusInProgress      AppointmentStatus = "in_progress"
	AppointmentStatusServiceComplete AppointmentStatus = "service_complete"
	AppointmentStatusCompleted       AppointmentStatus = "completed"
	AppointmentStatusCancelled       AppointmentStatus = "cancelled"
	AppointmentStatusNoShow          AppointmentStatus = "no_show"
	AppointmentStatusRescheduled     AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCheckedIn,
		AppointmentStatusInProgress, AppointmentStatusServiceComplete, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow, AppointmentStatusRescheduled:
		return true
	}
	return false
}

// Final reports whether no further transition is allowed out of s.
func (s AppointmentStatus) Final() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusDepositPaid PaymentStatus = "deposit_paid"
	PaymentStatusPaidFull    PaymentStatus = "paid_full"
	PaymentStatusPartial     PaymentStatus = "partial"
	PaymentStatusRefunded    PaymentStatus = "refunded"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusDisputed    PaymentStatus = "disputed"
)

type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

type PaymentTransactionType string

const (
	PaymentTransactionDeposit PaymentTransactionType = "deposit"
	PaymentTransactionPayment PaymentTransactionType = "payment"
	PaymentTransactionRefund  PaymentTransactionType = "refund"
)

// ServiceLine is one booked service. Duration is in minutes.
type ServiceLine struct {
	Service   uuid.UUID       `json:"service" bson:"service"`
	Staff     *uuid.UUID      `json:"staff,omitempty" bson:"staff,omitempty"`
	Duration  int             `json:"duration" bson:"duration"`
	Price     decimal.Decimal `json:"price" bson:"price"`
	StartTime *time.Time      `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time      `json:"endTime,omitempty" bson:"end_time,omitempty"`
}

type Buffer struct {
	Before int `json:"before" bson:"before"`
	After  int `json:"after" bson:"after"`
}

type Scheduling struct {
	DateTime      *time.Time `json:"dateTime,omitempty" bson:"date_time,omitempty"`
	TotalDuration int        `json:"totalDuration" bson:"total_duration"`
	Buffer        Buffer     `json:"buffer" bson:"buffer"`
	Location      string     `json:"location,omitempty" bson:"location,omitempty"`
	Room          string     `json:"room,omitempty" bson:"room,omitempty"`
}

type Progress struct {
	CheckedInAt        *time.Time `json:"checkedInAt,omitempty" bson:"checked_in_at,omitempty"`
	ServiceStartedAt   *time.Time `json:"serviceStartedAt,omitempty" bson:"service_started_at,omitempty"`
	ServiceCompletedAt *time.Time `json:"serviceCompletedAt,omitempty" bson:"service_completed_at,omitempty"`
	CheckedOutAt       *time.Time `json:"checkedOutAt,omitempty" bson:"checked_out_at,omitempty"`
}

type Discount struct {
	Amount decimal.Decimal `json:"amount" bson:"amount" binding:"gte=0"`
	Type   DiscountType    `json:"type" bson:"type" binding:"required,oneof=fixed percentage"`
	Reason string          `json:"reason,omitempty" bson:"reason,omitempty"`
}

type Pricing struct {
	Subtotal   decimal.Decimal `json:"subtotal" bson:"subtotal"`
	Discount   *Discount       `json:"discount,omitempty" bson:"discount,omitempty"`
	Tax        decimal.Decimal `json:"tax" bson:"tax"`
	Tip        decimal.Decimal `json:"tip" bson:"tip"`
	TotalPrice decimal.Decimal `json:"totalPrice" bson:"total_price"`
}

type PaymentTransaction struct {
	ID          uuid.UUID              `json:"id" bson:"id"`
	Type        PaymentTransactionType `json:"type" bson:"type"`
	Amount      decimal.Decimal        `json:"amount" bson:"amount"`
	Method      string                 `json:"method,omitempty" bson:"method,omitempty"`
	Reference   string                 `json:"reference,omitempty" bson:"reference,omitempty"`
	ProcessedAt time.Time              `json:"processedAt" bson:"processed_at"`
}

type Payment struct {
	Status           PaymentStatus        `json:"status" bson:"status"`
	Method           string               `json:"method,omitempty" bson:"method,omitempty"`
	DepositAmount    decimal.Decimal      `json:"depositAmount" bson:"deposit_amount"`
	PaidAmount       decimal.Decimal      `json:"paidAmount" bson:"paid_amount"`
	RemainingBalance decimal.Decimal      `json:"remainingBalance" bson:"remaining_balance"`
	Transactions     []PaymentTransaction `json:"transactions" bson:"transactions"`
}

// WalkInCustomer carries contact details for a guest without a customer record.
type WalkInCustomer struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

type RescheduleEntry struct {
	PreviousDateTime *time.Time `json:"previousDateTime,omitempty" bson:"previous_date_time,omitempty"`
	NewDateTime      time.Time  `json:"newDateTime" bson:"new_date_time"`
	Reason           string     `json:"reason,omitempty" bson:"reason,omitempty"`
	RescheduledAt    time.Time  `json:"rescheduledAt" bson:"rescheduled_at"`
	RescheduledBy    *uuid.UUID `json:"rescheduledBy,omitempty" bson:"rescheduled_by,omitempty"`
}

// Appointment is either booked for a Customer or a WalkIn, never both.
type Appointment struct {
	Base              `bson:",inline"`
	Audit             `bson:",inline"`
	DisplayName       string            `json:"displayName" bson:"display_name"`
	Customer          *uuid.UUID        `json:"customer,omitempty" bson:"customer,omitempty"`
	WalkIn            *WalkInCustomer   `json:"walkIn,omitempty" bson:"walk_in,omitempty"`
	Services          []ServiceLine     `json:"services" bson:"services"`
	Scheduling        Scheduling        `json:"scheduling" bson:"scheduling"`
	Status            AppointmentStatus `json:"status" bson:"status"`
	Progress          Progress          `json:"progress" bson:"progress"`
	Pricing           Pricing           `json:"pricing" bson:"pricing"`
	Payment           Payment           `json:"payment" bson:"payment"`
	Notes             string            `json:"notes,omitempty" bson:"notes,omitempty"`
	RescheduleHistory []RescheduleEntry `json:"rescheduleHistory,omitempty" bson:"reschedule_history,omitempty"`
	Version           int               `json:"version" bson:"version"`
}

func (a *Appointment) IsWalkIn() bool {
	return a.WalkIn != nil
}

type ServiceLineRequest struct {
	Service   uuid.UUID       `json:"service" binding:"required"`
	Staff     *uuid.UUID      `json:"staff"`
	Duration  int             `json:"duration" binding:"gte=0"`
	Price     decimal.Decimal `json:"price" binding:"gte=0"`
	StartTime *time.Time      `json:"startTime"`
	EndTime   *time.Time      `json:"endTime"`
}

type CreateAppointmentRequest struct {
	Customer   *uuid.UUID           `json:"customer"`
	WalkIn     *WalkInCustomer      `json:"walkIn"`
	Services   []ServiceLineRequest `json:"services" binding:"required,min=1,dive"`
	Scheduling Scheduling           `json:"scheduling"`
	Status     AppointmentStatus    `json:"status" binding:"omitempty,appointment_status"`
	Discount   *Discount            `json:"discount"`
	Tip        decimal.Decimal      `json:"tip" binding:"gte=0"`
	Payment    *PaymentRequest      `json:"payment"`
	Notes      string               `json:"notes" binding:"max=2000"`
}

type PaymentRequest struct {
	Method        string          `json:"method"`
	DepositAmount decimal.Decimal `json:"depositAmount" binding:"gte=0"`
}

// UpdateAppointmentRequest replaces the mutable fields of an appointment.
type UpdateAppointmentRequest = CreateAppointmentRequest

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,appointment_status"`
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal        `json:"amount" binding:"gt=0"`
	Type      PaymentTransactionType `json:"type" binding:"omitempty,oneof=deposit payment refund"`
	Method    string                 `json:"method"`
	Reference string                 `json:"reference"`
}

type RescheduleRequest struct {
	DateTime time.Time `json:"dateTime" binding:"required"`
	Reason   string    `json:"reason"`
}

type AppointmentFilters struct {
	Customer  *uuid.UUID
	Status    AppointmentStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}
