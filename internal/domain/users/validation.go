package users

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// The email pattern is a fixed contract shared with the clients, not a full
// RFC 5322 check.
var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Phones are Sri Lankan numbers in the exact layout +94 XX XXX XXXX.
var phoneRegex = regexp.MustCompile(`^\+94 \d{2} \d{3} \d{4}$`)

const (
	msgNameRequired     = "Please provide a name"
	msgNameTooLong      = "Name cannot be more than 50 characters"
	msgEmailRequired    = "Please provide an email"
	msgEmailInvalid     = "Please provide a valid email address"
	msgPasswordRequired = "Please provide a password"
	msgPasswordTooShort = "Password must be at least 8 characters"
	msgPhoneInvalid     = "Phone number must be in format: +94 XX XXX XXXX"
	msgCompanyRequired  = "Please provide your company name"
	msgRegNumberMissing = "Please provide your SLMC registration number"
)

// fieldMessages maps validator struct-field names and failed tags to the
// messages clients render.
var fieldMessages = map[string]map[string]string{
	"Name":      {"required": msgNameRequired, "max": msgNameTooLong},
	"Email":     {"required": msgEmailRequired},
	"Password":  {"required": msgPasswordRequired, "min": msgPasswordTooShort},
	"Company":   {"required": msgCompanyRequired},
	"RegNumber": {"required": msgRegNumberMissing},
}

// fieldParams maps validator struct-field names to wire parameter names.
var fieldParams = map[string]string{
	"Name":      "name",
	"Email":     "email",
	"Password":  "password",
	"Company":   "company",
	"RegNumber": "regNumber",
}

// collectFieldErrors runs struct-tag validation plus the pattern checks
// shared by every signup variant, batching all failures.
func collectFieldErrors(validate *validator.Validate, params any, email, phone string) []FieldError {
	var fields []FieldError

	if err := validate.Struct(params); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				param, known := fieldParams[verr.Field()]
				if !known {
					continue
				}
				msg := fieldMessages[verr.Field()][verr.Tag()]
				if msg == "" {
					msg = "Invalid value"
				}
				fields = append(fields, FieldError{Param: param, Msg: msg})
			}
		}
	}

	if email != "" && !emailRegex.MatchString(email) {
		fields = append(fields, FieldError{Param: "email", Msg: msgEmailInvalid})
	}

	if phone != "" && !validPhone(phone) {
		fields = append(fields, FieldError{Param: "phone", Msg: msgPhoneInvalid})
	}

	return fields
}

// validPhone requires the fixed layout and that the digits form a real Sri
// Lankan number.
func validPhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}
	parsed, err := phonenumbers.Parse(phone, "LK")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}
