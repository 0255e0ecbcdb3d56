package checkout

import (
	"regexp"
	"strings"

	"github.com/jerseyshop/storefront/internal/domain"
)

// Form field names, matching the JSON keys of the saved draft
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldContactNumber = "contactNumber"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldDistrict      = "district"
	FieldState         = "state"
	FieldPincode       = "pincode"
	FieldPostOffice    = "postOffice"
	FieldNotes         = "notes"
)

var (
	lettersRe3to50 = regexp.MustCompile(`^[A-Za-z ]{3,50}$`)
	lettersRe2to50 = regexp.MustCompile(`^[A-Za-z ]{2,50}$`)
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)
	tenDigitsRe    = regexp.MustCompile(`^[0-9]{10}$`)
	sixDigitsRe    = regexp.MustCompile(`^[0-9]{6}$`)
	nonDigitRe     = regexp.MustCompile(`[^0-9]`)
)

// Rule validates one form field.
// Normalize runs on input (before storing); Valid runs on the stored value.
type Rule struct {
	Field     string
	Required  bool
	Normalize func(string) string
	Valid     func(string) bool
	Message   string
}

// Rules is the checkout validation table, in form order
var Rules = []Rule{
	{
		Field:    FieldName,
		Required: true,
		Valid:    trimmed(lettersRe3to50.MatchString),
		Message:  "Name must be 3-50 letters and spaces",
	},
	{
		Field:    FieldEmail,
		Required: true,
		Valid:    ValidEmail,
		Message:  "Enter a valid email address",
	},
	{
		Field:     FieldContactNumber,
		Required:  true,
		Normalize: DigitsOnly,
		Valid:     tenDigitsRe.MatchString,
		Message:   "Contact number must be exactly 10 digits",
	},
	{
		Field:    FieldAddress,
		Required: true,
		Valid:    func(s string) bool { return len(strings.TrimSpace(s)) >= 5 },
		Message:  "Address must be at least 5 characters",
	},
	{
		Field:    FieldCity,
		Required: true,
		Valid:    trimmed(lettersRe2to50.MatchString),
		Message:  "City must be 2-50 letters and spaces",
	},
	{
		Field:    FieldDistrict,
		Required: true,
		Valid:    trimmed(lettersRe2to50.MatchString),
		Message:  "District must be 2-50 letters and spaces",
	},
	{
		Field:    FieldState,
		Required: true,
		Valid:    trimmed(lettersRe2to50.MatchString),
		Message:  "State must be 2-50 letters and spaces",
	},
	{
		Field:     FieldPincode,
		Required:  true,
		Normalize: DigitsOnly,
		Valid:     sixDigitsRe.MatchString,
		Message:   "Pincode must be exactly 6 digits",
	},
	{
		Field:   FieldPostOffice,
		Valid:   trimmed(lettersRe2to50.MatchString),
		Message: "Post office must be 2-50 letters and spaces",
	},
}

// ValidEmail checks the local@domain.tld shape and rejects the ".comm" typo
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if !emailRe.MatchString(s) {
		return false
	}
	return !strings.HasSuffix(strings.ToLower(s), ".comm")
}

// ValidName checks a person's name the way the checkout form does
func ValidName(s string) bool {
	return trimmed(lettersRe3to50.MatchString)(s)
}

// DigitsOnly strips everything but 0-9
func DigitsOnly(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

func trimmed(fn func(string) bool) func(string) bool {
	return func(s string) bool { return fn(strings.TrimSpace(s)) }
}

func ruleFor(field string) (Rule, bool) {
	for _, r := range Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

// ValidateField returns the error message for one field, or "" when it passes.
// Empty optional fields always pass.
func ValidateField(field, value string) string {
	r, ok := ruleFor(field)
	if !ok {
		return ""
	}
	if strings.TrimSpace(value) == "" {
		if r.Required {
			return requiredMessage(field)
		}
		return ""
	}
	if !r.Valid(value) {
		return r.Message
	}
	return ""
}

// Validate checks every rule and returns field → message for the failures
func Validate(form domain.CheckoutForm) map[string]string {
	errs := make(map[string]string)
	for _, r := range Rules {
		if msg := ValidateField(r.Field, fieldValue(&form, r.Field)); msg != "" {
			errs[r.Field] = msg
		}
	}
	return errs
}

// Normalize applies a field's input normalizer
func Normalize(field, value string) string {
	if r, ok := ruleFor(field); ok && r.Normalize != nil {
		return r.Normalize(value)
	}
	return value
}

func requiredMessage(field string) string {
	switch field {
	case FieldContactNumber:
		return "Contact number is required"
	default:
		return strings.ToUpper(field[:1]) + field[1:] + " is required"
	}
}

// fieldValue reads a form field by name
func fieldValue(form *domain.CheckoutForm, field string) string {
	if p := fieldPtr(form, field); p != nil {
		return *p
	}
	return ""
}

func fieldPtr(form *domain.CheckoutForm, field string) *string {
	switch field {
	case FieldName:
		return &form.Name
	case FieldEmail:
		return &form.Email
	case FieldContactNumber:
		return &form.ContactNumber
	case FieldAddress:
		return &form.Address
	case FieldCity:
		return &form.City
	case FieldDistrict:
		return &form.District
	case FieldState:
		return &form.State
	case FieldPincode:
		return &form.Pincode
	case FieldPostOffice:
		return &form.PostOffice
	case FieldNotes:
		return &form.Notes
	default:
		return nil
	}
}
