package edl

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports a malformed or missing EDL field. It is returned
// before any engine invocation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit decision list: %s: %s", e.Field, e.Reason)
}

// Validate checks an EDL against its field constraints
func Validate(e *EditDecisionList) error {
	if e == nil {
		return &ValidationError{Field: "edl", Reason: "missing"}
	}

	err := validate.Struct(e)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{
			Field:  verrs[0].Namespace(),
			Reason: fmt.Sprintf("failed %q constraint", verrs[0].Tag()),
		}
	}
	return err
}
