package appointment

import (
	"fmt"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

var progression = map[model.AppointmentStatus]int{
	model.AppointmentStatusScheduled:       0,
	model.AppointmentStatusConfirmed:       1,
	model.AppointmentStatusCheckedIn:       2,
	model.AppointmentStatusInProgress:      3,
	model.AppointmentStatusServiceComplete: 4,
	model.AppointmentStatusCompleted:       5,
}

// ValidateTransition checks that an appointment may move from one status to another.
func ValidateTransition(from, to model.AppointmentStatus) error {
	if !to.Valid() {
		return errors.Validation(fmt.Sprintf("invalid appointment status %q", to))
	}
	if from == to {
		return nil
	}
	if from.Final() {
		return errors.Validation(fmt.Sprintf("appointment is %s and can no longer change status", from))
	}

	switch to {
	case model.AppointmentStatusCancelled, model.AppointmentStatusRescheduled:
		return nil
	case model.AppointmentStatusNoShow:
		if from == model.AppointmentStatusScheduled || from == model.AppointmentStatusConfirmed {
			return nil
		}
		return errors.Validation(fmt.Sprintf("cannot mark a %s appointment as no_show", from))
	}

	if from == model.AppointmentStatusRescheduled {
		if to == model.AppointmentStatusScheduled || to == model.AppointmentStatusConfirmed {
			return nil
		}
		return errors.Validation(fmt.Sprintf("rescheduled appointment must be scheduled or confirmed before %s", to))
	}

	fromRank, ok := progression[from]
	if ok && progression[to] > fromRank {
		return nil
	}
	return errors.Validation(fmt.Sprintf("cannot move appointment from %s to %s", from, to))
}
