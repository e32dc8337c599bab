package model

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	salonvalidator "github.com/jwalitptl/salon-api/pkg/validator"
)

var maxPercentage = decimal.NewFromInt(100)

// ValidationRules returns the custom binding tags and struct checks used by
// the request types in this package.
func ValidationRules() salonvalidator.Rules {
	return salonvalidator.Rules{
		Tags: map[string]validator.Func{
			"appointment_status": func(fl validator.FieldLevel) bool {
				return AppointmentStatus(fl.Field().String()).Valid()
			},
			"post_category": func(fl validator.FieldLevel) bool {
				value := fl.Field().String()
				for _, c := range PostCategories {
					if c == value {
						return true
					}
				}
				return false
			},
		},
		Structs: []salonvalidator.StructRule{
			{Fn: validateDiscount, Types: []interface{}{Discount{}, DiscountDetails{}}},
		},
	}
}

// A percentage discount cannot exceed the whole price.
func validateDiscount(sl validator.StructLevel) {
	switch d := sl.Current().Interface().(type) {
	case Discount:
		if d.Type == DiscountTypePercentage && d.Amount.GreaterThan(maxPercentage) {
			sl.ReportError(d.Amount, "amount", "Amount", "lte", "100")
		}
	case DiscountDetails:
		if d.DiscountType == DiscountTypePercentage && d.DiscountValue.GreaterThan(maxPercentage) {
			sl.ReportError(d.DiscountValue, "discountValue", "DiscountValue", "lte", "100")
		}
	}
}
