package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/budget"
)

// Input is the tips request contract.
type Input struct {
	Budget         budget.Budget   `json:"budget"`
	Expenses       budget.Expenses `json:"expenses"`
	FinancialGoals string          `json:"financialGoals"`
}

// Output is the tips response contract. Tips is never nil.
type Output struct {
	Tips []string `json:"tips"`
}

// Validate checks the budget and expense figures. Any goal text is accepted.
func (in Input) Validate() error {
	if err := budget.Validator().Struct(in); err != nil {
		return apperr.ParseValidationErrors(err)
	}
	return nil
}

// wireInput tracks which fields were present in the JSON document. A missing
// or null total or category amount is a validation error, not a zero.
type wireInput struct {
	Budget         *wireBudget   `json:"budget" validate:"required"`
	Expenses       *wireExpenses `json:"expenses" validate:"required"`
	FinancialGoals *string       `json:"financialGoals" validate:"required"`
}

type wireBudget struct {
	Categories  map[string]*float64 `json:"categories" validate:"required,dive,keys,min=1,endkeys,required,gte=0"`
	TotalBudget *float64            `json:"totalBudget" validate:"required"`
}

type wireExpenses struct {
	Categories    map[string]*float64 `json:"categories" validate:"required,dive,keys,min=1,endkeys,required,gte=0"`
	TotalExpenses *float64            `json:"totalExpenses" validate:"required"`
}

func amounts(in map[string]*float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = *v
	}
	return out
}

// DecodeInput parses and validates a JSON tips request. Wrong JSON types
// and missing fields are reported as VALIDATION_ERROR.
func DecodeInput(data []byte) (Input, error) {
	var w wireInput
	if err := json.Unmarshal(data, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "input"
			}
			return Input{}, apperr.NewValidationError(field,
				fmt.Sprintf("%s must be %s, got %s", field, jsonTypeName(typeErr.Type), typeErr.Value)).
				WithError(err)
		}
		return Input{}, apperr.ErrBadRequest.WithError(err)
	}
	if err := budget.Validator().Struct(w); err != nil {
		return Input{}, apperr.ParseValidationErrors(err)
	}
	return Input{
		Budget: budget.Budget{
			Categories:  amounts(w.Budget.Categories),
			TotalBudget: *w.Budget.TotalBudget,
		},
		Expenses: budget.Expenses{
			Categories:    amounts(w.Expenses.Categories),
			TotalExpenses: *w.Expenses.TotalExpenses,
		},
		FinancialGoals: *w.FinancialGoals,
	}, nil
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice:
		return "an array"
	default:
		return "a " + t.String()
	}
}
