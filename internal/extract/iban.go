package extract

import (
	"regexp"
	"strings"
)

// ibanLengths maps IBAN country codes to their fixed total length.
var ibanLengths = map[string]int{
	"RO": 24, "DE": 22, "GB": 22, "FR": 27, "IT": 27, "ES": 24, "NL": 18,
	"BE": 16, "AT": 20, "PL": 28, "CH": 21, "SE": 24, "NO": 15, "DK": 18,
	"FI": 18, "PT": 25, "GR": 27, "CZ": 24, "HU": 28, "IE": 22, "SK": 24,
}

// candidateIBANLengths is the fallback ladder tried when the country code
// is unknown, shortest first.
var candidateIBANLengths = []int{15, 16, 18, 20, 22, 24, 27, 28, 34}

// bankNameTokens are words that follow an IBAN on many bills ("RO49...
// Banca Transilvania"); a fallback candidate immediately followed by one of
// these is cut short and must be rejected.
var bankNameTokens = []string{"BANCA", "BANK", "BANQUE", "BANCO", "BANKI", "BANKA"}

// ibanAnchorRe finds the country-code + check-digit anchor.
var ibanAnchorRe = regexp.MustCompile(`[A-Z]{2}\d{2}`)

// ibanLenientRe is the last-resort pattern for malformed or foreign IBANs.
var ibanLenientRe = regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z0-9]{11,30}`)

// NormalizeIBAN reconstructs an IBAN from a line that may interleave it
// with whitespace and trailing bank names. The line is whitespace-stripped
// and uppercased, then sliced at the first country-code anchor using the
// country's known length; unknown countries fall back to a ladder of valid
// IBAN lengths, rejecting slices that run into a bank-name token. When
// nothing resembles an IBAN the stripped, uppercased line is returned.
func NormalizeIBAN(line string) string {
	stripped := strings.ToUpper(strings.Join(strings.Fields(line), ""))

	loc := ibanAnchorRe.FindStringIndex(stripped)
	if loc != nil {
		start := loc[0]
		rest := stripped[start:]

		if want, ok := ibanLengths[rest[:2]]; ok && len(rest) >= want {
			if candidate := rest[:want]; isAlnumString(candidate) {
				return candidate
			}
		}

		for _, length := range candidateIBANLengths {
			if len(rest) < length {
				break
			}
			candidate := rest[:length]
			if !isAlnumString(candidate) {
				continue
			}
			if followedByBankToken(rest[length:]) {
				continue
			}
			return candidate
		}
	}

	if m := ibanLenientRe.FindString(stripped); m != "" && len(m) >= 15 && len(m) <= 34 {
		return m
	}
	return stripped
}

func followedByBankToken(rest string) bool {
	for _, tok := range bankNameTokens {
		if strings.HasPrefix(rest, tok) {
			return true
		}
	}
	return false
}

func isAlnumString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isAlphanumeric(s[i]) {
			return false
		}
	}
	return true
}
