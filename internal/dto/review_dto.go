package dto

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FormRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message,omitempty"`
}

func (r *FormRequest) Validate() error {
	return validate.Struct(r)
}

type CreateReviewRequest struct {
	Name   string `json:"name" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required"`
}

func (r *CreateReviewRequest) Validate() error {
	return validate.Struct(r)
}

// SeedReviewRequest is one element of a bulk seed payload. It is inserted as
// given, without validation.
type SeedReviewRequest struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
	Approved Flag   `json:"approved"`
}

// Flag is a boolean that also accepts 0/1 numbers, "true"/"1"-style strings
// and null in JSON. Any non-zero number is true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch s := string(data); {
	case s == "null" || s == "false":
		*f = false
	case s == "true":
		*f = true
	case len(s) > 1 && s[0] == '"':
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid flag %s: %w", s, err)
		}
		if unquoted == "" {
			*f = false
			return nil
		}
		b, err := strconv.ParseBool(unquoted)
		if err != nil {
			return fmt.Errorf("invalid flag %s: %w", s, err)
		}
		*f = Flag(b)
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid flag %s: %w", s, err)
		}
		*f = n != 0
	}
	return nil
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SeedResponse struct {
	Success  bool `json:"success"`
	Inserted int  `json:"inserted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
