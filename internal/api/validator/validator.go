package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"crm/internal/models"
)

// ValidationErrors wraps the validator's ValidationErrors.
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator.
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance with the CRM's custom tags
// registered.
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("user_role", validateUserRole); err != nil {
		return nil
	}
	if err := v.RegisterValidation("object_type", validateObjectType); err != nil {
		return nil
	}
	if err := v.RegisterValidation("capability", validateCapability); err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidUserRole(models.UserRole(fl.Field().String()))
}

func validateObjectType(fl playgroundvalidator.FieldLevel) bool {
	objectType := models.ObjectType(fl.Field().String())
	if objectType == models.ObjectTypeUser {
		return true
	}
	for _, known := range models.PermissionObjectTypes() {
		if objectType == known {
			return true
		}
	}
	return false
}

func validateCapability(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidCapability(models.Capability(fl.Field().String()))
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	fields := make([]string, 0, len(ve))
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}
