package models

import (
	"errors"
	"strings"
	"sync"

	"busbooking/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// check runs struct validation and converts the first failure into a
// domain.ValidationError keyed by the JSON field name.
func check(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.ValidationError{
			Field: strings.ToLower(fe.Field()),
			Msg:   "failed " + fe.Tag() + " check",
			Err:   err,
		}
	}
	return domain.ValidationError{Msg: err.Error(), Err: err}
}
