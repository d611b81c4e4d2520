package models

import (
	"regexp"
	"strings"
	"unicode"
)

// Field names a validated order field
type Field string

const (
	FieldPayment Field = "payment"
	FieldAddress Field = "address"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
)

// Validation messages
const (
	MsgPaymentRequired = "must choose a payment method"
	MsgPaymentUnknown  = "unknown payment method"
	MsgAddressRequired = "must provide delivery address"
	MsgEmailRequired   = "must provide email"
	MsgEmailFormat     = "invalid email format"
	MsgPhoneRequired   = "must provide phone"
	MsgPhoneFormat     = "invalid phone format"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+7\d{10}$`)
)

// ValidationErrors maps a field to a human-readable message. Empty means valid.
type ValidationErrors map[Field]string

// Valid reports whether there are no errors
func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

// First returns the message of the first field in order that has one
func (v ValidationErrors) First(order ...Field) string {
	for _, f := range order {
		if msg, ok := v[f]; ok {
			return msg
		}
	}
	return ""
}

// ValidatePayment checks the payment stage fields
func ValidatePayment(payment PaymentMethod, address string) ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case payment == "":
		errs[FieldPayment] = MsgPaymentRequired
	case !payment.Known():
		errs[FieldPayment] = MsgPaymentUnknown
	}
	if address == "" {
		errs[FieldAddress] = MsgAddressRequired
	}
	return errs
}

// ValidateContact checks the contact stage fields
func ValidateContact(email, phone string) ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = MsgEmailFormat
	}
	switch {
	case phone == "":
		errs[FieldPhone] = MsgPhoneRequired
	case !phonePattern.MatchString(stripSpaces(phone)):
		errs[FieldPhone] = MsgPhoneFormat
	}
	return errs
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
