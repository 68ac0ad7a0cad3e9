// Package validation wraps go-playground/validator with the struct-tag
// rules SPEC_FULL's request DTOs declare, translating failures into
// apierrors.ValidationError so handlers return a single field+message pair
// per violation (§7).
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/assetledger/backend/internal/apierrors"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s against its `validate:"..."` tags and returns the
// first violation as an apierrors.ValidationError, or nil.
func Struct(s any) error {
	if err := instance.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			first := verrs[0]
			return apierrors.ValidationError(jsonFieldName(first), describe(first))
		}
		return apierrors.ValidationError("", err.Error())
	}
	return nil
}

// All validates s and returns every violation, for callers that want to
// surface the complete set rather than failing fast on the first.
func All(s any) []*apierrors.ServiceError {
	err := instance.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*apierrors.ServiceError{apierrors.ValidationError("", err.Error())}
	}
	out := make([]*apierrors.ServiceError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierrors.ValidationError(jsonFieldName(fe), describe(fe)))
	}
	return out
}

func jsonFieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}
