package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo so handlers
// can call c.Validate on bound request bodies.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator using struct `validate` tags.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New()}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

var _ echo.Validator = (*RequestValidator)(nil)
