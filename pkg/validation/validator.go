package validation

import (
	"github.com/go-playground/validator/v10"

	"lead-system/pkg/constants"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func New() *CustomValidator {
	v := validator.New()

	if err := registerRules(v); err != nil {
		panic("failed to register custom validation rules: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("reschedule_offset", isAllowedOffset); err != nil {
		return err
	}
	return v.RegisterValidation("product_type", isProductType)
}

func isAllowedOffset(fl validator.FieldLevel) bool {
	return constants.IsAllowedRescheduleOffset(int(fl.Field().Int()))
}

func isProductType(fl validator.FieldLevel) bool {
	switch constants.ProductType(fl.Field().String()) {
	case constants.ProductHeating, constants.ProductSolar:
		return true
	}
	return false
}
