// Package models defines the data structures for the admissions engine.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Common errors
var (
	ErrProfileNotFound       = errors.New("profile not found, please complete your profile first")
	ErrUniversityNotFound    = errors.New("university not found")
	ErrChecklistExists       = errors.New("checklist already exists for this university")
	ErrChecklistNotFound     = errors.New("checklist not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrEmptyUserID           = errors.New("user id cannot be empty")
	ErrInvalidInput          = errors.New("invalid input")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// IELTS bands come in steps of 0.5.
	_ = v.RegisterValidation("half_band", func(fl validator.FieldLevel) bool {
		band := fl.Field().Float()
		return math.Mod(band*2, 1) == 0
	})
	_ = v.RegisterValidation("checklist_category", func(fl validator.FieldLevel) bool {
		return ChecklistItemCategory(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("item_status", func(fl validator.FieldLevel) bool {
		return ChecklistItemStatus(fl.Field().String()).IsValid()
	})

	return v
}

// ValidateProfile checks that every present field of a profile lies in its domain.
// The scoring engine itself never validates.
func ValidateProfile(p *StudentProfile) error {
	return validateStruct(p)
}

// ValidateRequest validates an API request body.
func ValidateRequest(req interface{}) error {
	return validateStruct(req)
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
