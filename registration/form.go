package registration

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
)

const (
	CURRENCY = "GHS"

	// Minor units per GHS (pesewas), as the gateway expects amounts.
	minorUnitFactor = 100
)

type PriceOption string

const (
	PRICE_STANDARD PriceOption = "51gh"
	PRICE_PREMIUM  PriceOption = "102gh"
)

var PriceOptions = []PriceOption{PRICE_STANDARD, PRICE_PREMIUM}

func (p PriceOption) Valid() bool {
	return slices.Contains(PriceOptions, p)
}

// Amount is the whole-cedi value encoded in the option, 0 when it has none.
func (p PriceOption) Amount() int64 {
	return LeadingAmount(string(p))
}

// Price is the option's amount in minor units, ready for the payment gateway.
func (p PriceOption) Price() *money.Money {
	return PaymentAmount(string(p))
}

type ParticipationRole string

const (
	ROLE_MEMBER     ParticipationRole = "member"
	ROLE_NON_MEMBER ParticipationRole = "non-member"
	ROLE_STUDENT    ParticipationRole = "student"
)

var ParticipationRoles = []ParticipationRole{ROLE_MEMBER, ROLE_NON_MEMBER, ROLE_STUDENT}

func (r ParticipationRole) Valid() bool {
	return slices.Contains(ParticipationRoles, r)
}

// LeadingAmount parses the first run of digits in s ("70gh" -> 70).
// Strings without digits, or with a digit run that overflows, yield 0.
func LeadingAmount(s string) int64 {
	start := strings.IndexFunc(s, unicode.IsDigit)
	if start < 0 {
		return 0
	}

	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	amount, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return 0
	}

	return amount
}

func PaymentAmount(priceOption string) *money.Money {
	return money.New(LeadingAmount(priceOption)*minorUnitFactor, CURRENCY)
}

type Form struct {
	Surname     string
	OtherNames  string
	Email       string
	Phone       string
	PriceOption PriceOption
	Role        ParticipationRole
}

func (f Form) FullName() string {
	return strings.TrimSpace(f.Surname + " " + f.OtherNames)
}

func (f Form) normalized() Form {
	return Form{
		Surname:     strings.TrimSpace(f.Surname),
		OtherNames:  strings.TrimSpace(f.OtherNames),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		PriceOption: PriceOption(strings.TrimSpace(string(f.PriceOption))),
		Role:        ParticipationRole(strings.TrimSpace(string(f.Role))),
	}
}

// Validate reports the first failing check, in form order.
func (f Form) Validate() error {
	f = f.normalized()

	switch {
	case f.Surname == "":
		return NewMissingFieldError("surname", "Please enter your surname")
	case f.OtherNames == "":
		return NewMissingFieldError("otherNames", "Please enter your other names")
	case f.Email == "":
		return NewMissingFieldError("email", "Please enter your email address")
	case f.Phone == "":
		return NewMissingFieldError("phone", "Please enter your phone number")
	case f.PriceOption == "":
		return NewMissingFieldError("priceOption", "Please select a price option")
	case !f.PriceOption.Valid():
		return NewInvalidFieldError("priceOption", "Please select a valid price option")
	case f.Role == "":
		return NewMissingFieldError("role", "Please select a role")
	case !f.Role.Valid():
		return NewInvalidFieldError("role", "Please select a valid role")
	}

	return nil
}
