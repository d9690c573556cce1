package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// requestError describes malformed client input. handleServiceError renders
// it as a validation problem.
type requestError struct {
	detail string
	fields []ValidationError
}

func (e *requestError) Error() string {
	return e.detail
}

func fieldError(field, message string) *requestError {
	return &requestError{
		detail: "Invalid " + field,
		fields: []ValidationError{{Field: field, Message: message}},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := decimal.NewFromString(s)
		return err == nil
	})
	return v
}

// bindAndValidate decodes the request body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &requestError{detail: "Invalid request body"}
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &requestError{detail: err.Error()}
		}
		details := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		return &requestError{detail: "Validation failed", fields: details}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte", "lte":
		return fe.Field() + " is out of range"
	case "email":
		return "Invalid email format"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "decimal":
		return fe.Field() + " must be a decimal number"
	}
	return fe.Field() + " is invalid"
}

// parseIDParam reads a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, fieldError(name, name+" must be a positive integer")
	}
	return int32(id), nil
}

// parseOptionalIntQuery reads an optional integer query parameter
func parseOptionalIntQuery(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fieldError(name, name+" must be an integer")
	}
	return &n, nil
}

// parseOptionalIDQuery reads an optional id query parameter
func parseOptionalIDQuery(c echo.Context, name string) (*int32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return nil, fieldError(name, name+" must be a positive integer")
	}
	v := int32(id)
	return &v, nil
}

// parsePeriodQuery reads the year and month filters shared by list endpoints
func parsePeriodQuery(c echo.Context) (year, month *int, err error) {
	if year, err = parseOptionalIntQuery(c, "year"); err != nil {
		return nil, nil, err
	}
	if month, err = parseOptionalIntQuery(c, "month"); err != nil {
		return nil, nil, err
	}
	if month != nil && (*month < 1 || *month > 12) {
		return nil, nil, fieldError("month", "month must be between 1 and 12")
	}
	return year, month, nil
}

// parseAmount reads a decimal string field already checked by the decimal tag
func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fieldError(field, field+" must be a decimal number")
	}
	return amount, nil
}

// actingUser resolves the identity a request acts as. An authenticated caller
// always acts as themselves and a different supplied id is refused. Without
// authentication the supplied id is used as given.
func actingUser(c echo.Context, supplied *int32, field string) (int32, error) {
	if authID := middleware.GetUserID(c); authID != 0 {
		if supplied != nil && *supplied != authID {
			return 0, domain.ErrIdentityMismatch
		}
		return authID, nil
	}
	if supplied == nil || *supplied <= 0 {
		return 0, fieldError(field, field+" is required")
	}
	return *supplied, nil
}
