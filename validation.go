package booster

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("lever_area", func(fl validator.FieldLevel) bool {
		return LeverArea(fl.Field().String()).Valid()
	})
}

// Validate checks the structural invariants a stored snapshot must satisfy:
// 3 to 10 products, exactly 3 levers, known lever areas and scores in range.
func (s BoosterState) Validate() error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q (%d issue(s))", ErrInvalidState, first.Namespace(), first.Tag(), len(fieldErrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
