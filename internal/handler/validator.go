package handler

import (
    "errors"
    "fmt"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/hotelmanager/hotel-booking/internal/model"
)

// RequestValidator adapts validator/v10 to echo.Validator.  It registers
// a "date" tag for yyyy-mm-dd strings.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator builds the validator used by every handler.
func NewRequestValidator() *RequestValidator {
    v := validator.New()
    if err := v.RegisterValidation("date", isDate); err != nil {
        panic(err)
    }
    return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
    return rv.v.Struct(i)
}

func isDate(fl validator.FieldLevel) bool {
    _, err := model.ParseDate(fl.Field().String())
    return err == nil
}

// validationMessage renders validator errors as one readable line.
func validationMessage(err error) string {
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return "invalid request"
    }
    msgs := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        switch fe.Tag() {
        case "required":
            msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
        case "min":
            msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
        case "email":
            msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
        case "date":
            msgs = append(msgs, fmt.Sprintf("%s must be a date in yyyy-mm-dd format", fe.Field()))
        default:
            msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
        }
    }
    return strings.Join(msgs, "; ")
}
