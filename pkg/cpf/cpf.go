// Package cpf validates the Brazilian national identification number (CPF),
// an 11-digit identifier whose last two digits are check digits computed via
// weighted modular sums.
package cpf

// Normalize strips every non-digit character from the input. The result is
// the canonical form stored and used as the client identity key.
func Normalize(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

// IsValid reports whether the input is a checksum-valid CPF. Formatting
// characters (dots, dashes, spaces) are ignored. Eleven identical digits are
// always invalid even though they satisfy the checksum.
func IsValid(raw string) bool {
	digits := Normalize(raw)
	if len(digits) != 11 {
		return false
	}

	identical := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			identical = false
			break
		}
	}
	if identical {
		return false
	}

	if checkDigit(digits, 9, 10) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits, 10, 11) == int(digits[10]-'0')
}

// checkDigit computes the verification digit over the first n digits with
// weights counting down from firstWeight to 2.
func checkDigit(digits string, n, firstWeight int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (firstWeight - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
