package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// StructRule is a struct-level check run for each of Types.
type StructRule struct {
	Fn    validator.StructLevelFunc
	Types []interface{}
}

// Rules are the custom tags and struct-level checks an application adds on
// top of the built-in ones.
type Rules struct {
	Tags    map[string]validator.Func
	Structs []StructRule
}

var once sync.Once

// RegisterWithGin installs rules on gin's binding validator. Only the first
// call has an effect.
func RegisterWithGin(rules Rules) error {
	var err error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = Register(v, rules)
	})
	return err
}

// Register adds json field names, the decimal type func and rules to v.
func Register(v *validator.Validate, rules Rules) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// gte/gt/lte on money fields compare the float value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	for tag, fn := range rules.Tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}
	for _, rule := range rules.Structs {
		v.RegisterStructValidation(rule.Fn, rule.Types...)
	}
	return nil
}
