package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/gst-billing-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct traduce los errores del validador a domain.ErrInvalidInput con los campos afectados.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// parseDate acepta "2006-01-02" o RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q (use YYYY-MM-DD o RFC 3339)", domain.ErrInvalidInput, s)
	}
	return t, nil
}
