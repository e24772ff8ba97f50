package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TagName is the struct tag shared with gin's request binding.
const TagName = "binding"

// Validator validates request structs with the project's custom rules.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.SetTagName(TagName)
	if err := Register(v); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// Register adds the custom rules and JSON field naming to v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("timeslot", validateTimeSlot); err != nil {
		return fmt.Errorf("failed to register timeslot: %w", err)
	}
	if err := v.RegisterValidation("digits10", validateDigits10); err != nil {
		return fmt.Errorf("failed to register digits10: %w", err)
	}
	return nil
}

// Validate returns nil or an error listing every failed field.
func (v *Validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return Humanize(err)
	}
	return nil
}

// Humanize rewrites validator errors as "field: rule" pairs.
func Humanize(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "timeslot":
		return fe.Field() + " must be a time of day in HH:MM format"
	case "digits10":
		return fe.Field() + " must be exactly 10 digits"
	case "unique":
		return fe.Field() + " must not contain duplicates"
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func validateDigits10(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
