package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var gmailPattern = regexp.MustCompile(`^[a-zA-Z0-9](\.?[a-zA-Z0-9_+])*@gmail\.com$`)

const passwordSpecials = "@#$%^&+=!"

var registerOnce sync.Once

// Register installs the custom tags on gin's validator and makes field
// errors report JSON names. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("gmail", func(fl validator.FieldLevel) bool {
			return gmailPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
}

// StrongPassword requires a lowercase letter, an uppercase letter, a digit
// and one of @#$%^&+=!.
func StrongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

var messages = map[string]string{
	"name.required":           "Name is required",
	"email.required":          "Email is required",
	"email.email":             "Invalid email format",
	"email.gmail":             "Email must be a valid Gmail address (e.g., user.name123@gmail.com)",
	"password.required":       "Password is required",
	"password.min":            "Password must be at least 8 characters long",
	"password.strongpassword": "Password must contain at least one lowercase letter, one uppercase letter, one digit, and one special character",
	"role.required":           "Role is required",
}

// FieldErrors turns a binding error into field -> message. Errors that are
// not validation errors (e.g. bad JSON) are reported under "error".
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"error": "Invalid request body"}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			out[field] = msg
		} else {
			out[field] = "Invalid value for " + field
		}
	}
	return out
}
