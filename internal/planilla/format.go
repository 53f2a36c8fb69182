package planilla

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names a form input of the batch registration form.
type Field string

const (
	FieldBatchNumber     Field = "batch_number"
	FieldObservationCode Field = "observation_code"
	FieldInvoiceNumber   Field = "invoice_number"
	FieldTaxID           Field = "tax_id"
	FieldPayeeName       Field = "payee_name"
	FieldAmountToPay     Field = "amount_to_pay"
)

// MaxAmountDigits caps the amount input; 15 digits stay exact in a float64 on the browser side.
const MaxAmountDigits = 15

const thousandsSeparator = '.'

// Valid reports whether f is one of the known form fields.
func (f Field) Valid() bool {
	switch f {
	case FieldBatchNumber, FieldObservationCode, FieldInvoiceNumber, FieldTaxID, FieldPayeeName, FieldAmountToPay:
		return true
	}
	return false
}

// Format normalizes a raw input value for field and recomputes the cursor position.
// The cursor is a rune offset into raw; the returned cursor is a rune offset into the result.
func Format(field Field, raw string, cursor int) (string, int) {
	switch field {
	case FieldBatchNumber, FieldTaxID:
		return keepRunes(raw, cursor, isDigit)
	case FieldInvoiceNumber:
		return keepRunes(raw, cursor, isASCIIAlnum)
	case FieldAmountToPay:
		return formatAmountInput(raw, cursor)
	default:
		return raw, clampCursor(cursor, len([]rune(raw)))
	}
}

// DigitsOnly drops every character that is not a decimal digit.
func DigitsOnly(s string) string {
	out, _ := keepRunes(s, 0, isDigit)
	return out
}

// AlphanumericOnly drops every character that is not an ASCII letter or digit.
func AlphanumericOnly(s string) string {
	out, _ := keepRunes(s, 0, isASCIIAlnum)
	return out
}

// FormatAmount renders n with es-CO thousands separators, e.g. 1500000 -> "1.500.000".
func FormatAmount(n int64) string {
	if n < 0 {
		return "-" + GroupThousands(strconv.FormatInt(-n, 10))
	}
	return GroupThousands(strconv.FormatInt(n, 10))
}

// FormatTotal renders a whole-peso decimal total the same way as FormatAmount.
func FormatTotal(d decimal.Decimal) string {
	d = d.Truncate(0)
	if d.IsNegative() {
		return "-" + GroupThousands(d.Neg().String())
	}
	return GroupThousands(d.String())
}

// GroupThousands inserts a separator every three digits from the right.
func GroupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	lead := n % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.Grow(n + n/3)
	b.WriteString(digits[:lead])
	for i := lead; i < n; i += 3 {
		b.WriteByte(thousandsSeparator)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseAmount strips display formatting and parses the remaining digits.
func ParseAmount(s string) (int64, error) {
	digits := DigitsOnly(s)
	if digits == "" || len(digits) > MaxAmountDigits {
		return 0, ErrInvalidAmount
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

func formatAmountInput(raw string, cursor int) (string, int) {
	runes := []rune(raw)
	cursor = clampCursor(cursor, len(runes))

	digits := DigitsOnly(raw)
	if len(digits) > MaxAmountDigits {
		digits = digits[:MaxAmountDigits]
	}

	value := ""
	if digits != "" {
		n, _ := strconv.ParseInt(digits, 10, 64)
		value = FormatAmount(n)
	}

	before := 0
	for _, r := range runes[:cursor] {
		if isDigit(r) {
			before++
		}
	}
	return value, cursorAfterDigits(value, before)
}

// cursorAfterDigits returns the offset right after the n-th digit of s, or the end of s
// when s holds fewer than n digits.
func cursorAfterDigits(s string, n int) int {
	if n <= 0 {
		return 0
	}
	runes := []rune(s)
	count := 0
	for i, r := range runes {
		if isDigit(r) {
			count++
			if count == n {
				return i + 1
			}
		}
	}
	return len(runes)
}

func keepRunes(raw string, cursor int, keep func(rune) bool) (string, int) {
	runes := []rune(raw)
	cursor = clampCursor(cursor, len(runes))
	out := make([]rune, 0, len(runes))
	newCursor := 0
	for i, r := range runes {
		if !keep(r) {
			continue
		}
		out = append(out, r)
		if i < cursor {
			newCursor++
		}
	}
	return string(out), newCursor
}

func clampCursor(cursor, length int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > length {
		return length
	}
	return cursor
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIAlnum(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
