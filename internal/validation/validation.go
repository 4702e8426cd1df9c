// Package validation normalises and checks user input before it reaches the
// store. Only the first failing field is reported, in struct field order.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"favtunes/internal/apperror"
	"favtunes/internal/models"
)

// User facing messages, keyed by "<json field>.<tag>".
var messages = map[string]string{
	"songName.required": "Song name is required",
	"artist.required":   "Artist name is required",
	"name.min":          "Name must be at least 2 characters",
	"email.email":       "Invalid email address",
	"password.min":      "Password must be at least 6 characters",
	"password.maxbytes": "Password must be at most 72 bytes",
	"password.required": "Password is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt refuses passwords longer than 72 bytes; min/max count runes.
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Favorite trims both fields and checks they are non-empty.
func Favorite(in models.FavoriteInput) (models.FavoriteInput, error) {
	in.SongName = strings.TrimSpace(in.SongName)
	in.Artist = strings.TrimSpace(in.Artist)
	return in, check(in)
}

// Register trims the name, normalises the email and checks length rules.
func Register(in models.RegisterInput) (models.RegisterInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	return in, check(in)
}

// Login normalises the email and requires a password.
func Login(in models.LoginInput) (models.LoginInput, error) {
	in.Email = NormalizeEmail(in.Email)
	return in, check(in)
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.NewUnexpected("Invalid input", err)
	}

	first := fieldErrs[0]
	if msg, ok := messages[first.Field()+"."+first.Tag()]; ok {
		return apperror.NewValidation(msg)
	}
	return apperror.NewValidation(fmt.Sprintf("Invalid %s", first.Field()))
}
