// Package validation holds the request validator shared by the HTTP
// commands, with the domain tags registered on it.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/accredit/internal/evidence"
	"github.com/JaimeStill/accredit/internal/faults"
	"github.com/JaimeStill/accredit/internal/kpi"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("framework", validateFramework)
	_ = validate.RegisterValidation("academic_year", validateAcademicYear)
}

// validateFramework accepts any case-insensitive framework tag.
func validateFramework(fl validator.FieldLevel) bool {
	_, err := kpi.ParseFramework(fl.Field().String())
	return err == nil
}

func validateAcademicYear(fl validator.FieldLevel) bool {
	_, err := evidence.ParseAcademicYear(fl.Field().String())
	return err == nil
}

// Struct validates v against its validate tags. Failures come back as an
// invalid_input fault whose context lists each offending field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return faults.New(faults.KindInvalidInput, err.Error(), nil)
	}

	fields := make(map[string]any, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}

	return faults.New(
		faults.KindInvalidInput,
		strings.Join(msgs, "; "),
		map[string]any{"fields": fields},
	)
}
