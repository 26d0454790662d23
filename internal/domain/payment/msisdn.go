package payment

import (
	"strings"

	"github.com/lexdesk/backend/internal/domain/shared"
)

// Operator is a mobile network
type Operator string

const (
	OperatorMTN     Operator = "mtn"
	OperatorOrange  Operator = "orange"
	OperatorUnknown Operator = "unknown"
)

// CameroonCountryCode is prepended to local numbers
const CameroonCountryCode = "237"

// Local 9-digit prefixes per operator. Longer prefixes are checked first.
var operatorPrefixes = map[Operator][]string{
	OperatorMTN:    {"650", "651", "652", "653", "654", "680", "681", "682", "683", "67"},
	OperatorOrange: {"655", "656", "657", "658", "659", "640", "686", "687", "688", "689", "69"},
}

// NormalizeMSISDN turns a Cameroon mobile number into E.164 form
// (+2376XXXXXXXX). Spaces, dashes, dots, a leading 00 and a missing
// country code are accepted.
func NormalizeMSISDN(raw string) (string, error) {
	s := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "00")
	if len(s) == 9 {
		s = CameroonCountryCode + s
	}
	if len(s) != 12 || !strings.HasPrefix(s, CameroonCountryCode) {
		return "", invalidMSISDN()
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", invalidMSISDN()
		}
	}
	if s[3] != '6' {
		return "", shared.NewDomainError("PAYMENT_INVALID", "Phone number is not a mobile number")
	}
	return "+" + s, nil
}

// OperatorOf returns the network of a normalized MSISDN
func OperatorOf(msisdn string) Operator {
	local := strings.TrimPrefix(strings.TrimPrefix(msisdn, "+"), CameroonCountryCode)
	if len(local) != 9 {
		return OperatorUnknown
	}
	best, bestLen := OperatorUnknown, 0
	for op, prefixes := range operatorPrefixes {
		for _, p := range prefixes {
			if len(p) > bestLen && strings.HasPrefix(local, p) {
				best, bestLen = op, len(p)
			}
		}
	}
	return best
}

// SupportsOperator reports whether provider can collect from op.
// Aggregators accept every known network.
func (p Provider) SupportsOperator(op Operator) bool {
	switch p {
	case ProviderMTNMoMo:
		return op == OperatorMTN
	case ProviderOrangeMoney:
		return op == OperatorOrange
	case ProviderCinetPay:
		return op == OperatorMTN || op == OperatorOrange
	}
	return false
}

// LocalNumber strips the country code, as some gateways expect
func LocalNumber(msisdn string) string {
	return strings.TrimPrefix(strings.TrimPrefix(msisdn, "+"), CameroonCountryCode)
}

func invalidMSISDN() error {
	return shared.NewDomainError("PAYMENT_INVALID", "Invalid Cameroon mobile number")
}
