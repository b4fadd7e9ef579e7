package services

import "strconv"

// Field normalization for the noisy text the sources emit: prices like
// "$ 12.500.000", kilometers like "45.000 Km", years buried in free text.
// Every function returns (value, true) on success and (0, false) when the
// text holds no usable number. They never panic.

// ExtractYear pulls an integer year out of free text.
func ExtractYear(text string) (int, bool) {
	return digitsToInt(text)
}

// ExtractPrice pulls an integer price out of source-formatted text, dropping
// currency symbols, thousands separators and whitespace. Decimal fractions
// after a comma are discarded.
func ExtractPrice(text string) (int, bool) {
	return digitsToInt(cutAtComma(text))
}

// ExtractKm pulls an integer kilometer count out of text with unit suffixes.
func ExtractKm(text string) (int, bool) {
	return digitsToInt(cutAtComma(text))
}

// cutAtComma drops everything from the first comma on. The sources use the
// comma only as a decimal separator ("12.500.000,50"), never for thousands.
func cutAtComma(s string) string {
	for i, r := range s {
		if r == ',' {
			return s[:i]
		}
	}
	return s
}

func digitsToInt(s string) (int, bool) {
	digits := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return n, true
}
