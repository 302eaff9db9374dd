package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// ErrValidation wraps every request validation failure.
var ErrValidation = errors.New("validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the validate tags on a request message.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.SplitN(fe.Namespace(), ".", 2)
	name := fe.Namespace()
	if len(field) == 2 {
		name = field[1]
	}
	switch fe.Tag() {
	case "required", "min":
		return name + " is required"
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "gte":
		return name + " must be at least " + fe.Param()
	case "lte", "max":
		return name + " must be at most " + fe.Param()
	case "oneof":
		return name + " must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("%s failed %q", name, fe.Tag())
	}
}

func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// validateExpense checks the invariants of an assembled expense before it is
// stored: a positive amount and shares that add up to it.
func validateExpense(expense *models.Expense) error {
	if !expense.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if !wholeCents(expense.Amount) {
		return fmt.Errorf("%w: amount %s has more than 2 decimal places", ErrValidation, expense.Amount)
	}
	if !expense.SplitType.Valid() {
		return fmt.Errorf("%w: unknown split_type %q", ErrValidation, expense.SplitType)
	}
	if len(expense.Participants) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, calculator.ErrNoParticipants)
	}
	for _, p := range expense.Participants {
		if p.Name == "" {
			return fmt.Errorf("%w: participant name is required", ErrValidation)
		}
		if p.Share.IsNegative() {
			return fmt.Errorf("%w: share for %s must not be negative", ErrValidation, p.Name)
		}
		if !wholeCents(p.Share) {
			return fmt.Errorf("%w: share for %s has more than 2 decimal places", ErrValidation, p.Name)
		}
	}
	if err := calculator.CheckShares(expense.Amount, expense.Participants); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
