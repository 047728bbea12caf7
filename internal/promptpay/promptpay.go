// Package promptpay builds EMVCo merchant-presented QR payloads for the Thai
// PromptPay scheme.
package promptpay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	payloadFormat    = "000201"
	staticInitiation = "010212"
	countryCode      = "5802TH"
	currencyTHB      = "5303764"

	tagMerchant = "29"
	tagAmount   = "54"
	tagCRC      = "63"

	// application identifier of PromptPay credit transfer, already in TLV form
	merchantAID = "0016A000000677010111"

	typeMobile     = "0113"
	typeNationalID = "0213"

	thaiCallingPrefix = "0066"
)

// MaxAmountLen is the widest amount tag 54 may carry, in characters.
const MaxAmountLen = 13

var (
	ErrInvalidIdentifier = errors.New("promptpay identifier must have 10, 13 or 15 digits")
	ErrInvalidAmount     = errors.New("promptpay amount must be non-negative and at most 13 characters")
)

type Kind int

const (
	KindMobile Kind = iota + 1
	KindNationalID
	KindEWallet
)

func (k Kind) String() string {
	switch k {
	case KindMobile:
		return "mobile"
	case KindNationalID:
		return "national_id"
	case KindEWallet:
		return "e_wallet"
	}
	return "unknown"
}

type Identifier struct {
	Kind   Kind
	Digits string
}

// Classify strips separators from raw and infers the identifier kind from the
// number of remaining digits.
func Classify(raw string) (Identifier, error) {
	digits := Digits(raw)

	switch len(digits) {
	case 10:
		return Identifier{Kind: KindMobile, Digits: digits}, nil
	case 13:
		return Identifier{Kind: KindNationalID, Digits: digits}, nil
	case 15:
		return Identifier{Kind: KindEWallet, Digits: digits}, nil
	}

	return Identifier{}, fmt.Errorf("%w: got %d", ErrInvalidIdentifier, len(digits))
}

// Digits drops every byte of s that is not an ASCII digit.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, s)
}

// Encode returns the payload for rawIdentifier, optionally fixing the amount
// the payer is asked to transfer. A nil or zero amount leaves the amount open.
//
// Encode never fails. Identifiers of unexpected length are embedded as-is;
// callers that need strictness validate with Classify first.
func Encode(rawIdentifier string, amount *decimal.Decimal) string {
	id := Digits(rawIdentifier)

	accountType := typeMobile
	if len(id) == 13 {
		accountType = typeNationalID
	}
	if len(id) == 10 {
		id = thaiCallingPrefix + id[1:]
	}

	var b strings.Builder
	b.WriteString(payloadFormat)
	b.WriteString(staticInitiation)
	b.WriteString(field(tagMerchant, merchantAID+accountType+id))
	b.WriteString(countryCode)
	b.WriteString(currencyTHB)

	if amount != nil && !amount.IsZero() {
		b.WriteString(field(tagAmount, amount.StringFixed(2)))
	}

	b.WriteString(tagCRC + "04")

	payload := b.String()

	return payload + fmt.Sprintf("%04X", CRC16([]byte(payload)))
}

func field(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// CheckAmount reports whether amount can be encoded as written by Encode.
func CheckAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || len(amount.StringFixed(2)) > MaxAmountLen {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return nil
}
