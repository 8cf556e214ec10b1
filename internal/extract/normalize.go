package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rentfolio/billscan/internal/model"
)

// Normalizer converts a raw target-line substring into a canonical value.
// Normalizers never fail: when no field-specific rule applies they return
// the best available string, usually the input itself.
type Normalizer func(line string) string

// normalizers dispatches by field name. Fields without an entry pass the
// prepared line through verbatim.
var normalizers = map[model.FieldName]Normalizer{
	model.FieldAmount:     NormalizeAmount,
	model.FieldCurrency:   NormalizeCurrency,
	model.FieldIBAN:       NormalizeIBAN,
	model.FieldBillNumber: NormalizeBillNumber,
	model.FieldDueDate:    NormalizeDate,
	model.FieldBillDate:   NormalizeDate,
}

// Normalize applies the field-specific normalizer for name to line.
func Normalize(name model.FieldName, line string) string {
	if fn, ok := normalizers[name]; ok {
		return fn(line)
	}
	return line
}

// amountRunRe matches the first numeric run in a line: digits optionally
// interleaved with dot/comma/space thousands and decimal separators.
var amountRunRe = regexp.MustCompile(`\d[\d.,\s]*\d|\d`)

// amountStripper removes every separator from a numeric run, leaving only
// the digits that encode the amount in minor units (bani/cents).
var amountStripper = strings.NewReplacer(".", "", ",", "", " ", "", "\t", "")

// NormalizeAmount parses the first numeric run as an integer amount in
// minor units and renders it as a decimal with two places ("12345" →
// "123.45"). Lines with no numeric run come back unchanged; numeric runs
// that fail integer parsing fall back to the raw matched substring.
func NormalizeAmount(line string) string {
	run := amountRunRe.FindString(line)
	if run == "" {
		return line
	}
	digits := amountStripper.Replace(run)
	minor, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return run
	}
	return strconv.FormatInt(minor/100, 10) + "." + zeroPad2(minor%100)
}

func zeroPad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// NormalizeCurrency finds the first run of exactly three letters and
// uppercases it, mapping the colloquial "LEI" to the ISO "RON". Lines with
// no three-letter run default to RON (every bill this product tracks is
// denominated in lei unless stated otherwise).
func NormalizeCurrency(line string) string {
	start := -1
	for i := 0; i <= len(line); i++ {
		isLetter := i < len(line) && isASCIILetter(line[i])
		if isLetter && start < 0 {
			start = i
			continue
		}
		if !isLetter && start >= 0 {
			if i-start == 3 {
				code := strings.ToUpper(line[start:i])
				if code == "LEI" {
					return "RON"
				}
				return code
			}
			start = -1
		}
	}
	return "RON"
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// billNumberPrefixes are tried in order; the first one that matches and
// leaves a remainder starting with an alphanumeric character is stripped.
var billNumberPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^seria eng nr\. `),
	regexp.MustCompile(`(?i)^seria \S+ nr\. `),
	regexp.MustCompile(`(?i)^nr\. `),
	regexp.MustCompile(`(?i)^no\. `),
	regexp.MustCompile(`(?i)^no `),
}

// NormalizeBillNumber strips a known series/number prefix from the line.
// Lines without a recognized prefix, or where stripping would leave
// something that does not start alphanumeric, are returned unchanged.
func NormalizeBillNumber(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, re := range billNumberPrefixes {
		loc := re.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}
		rest := trimmed[loc[1]:]
		if rest != "" && isAlphanumeric(rest[0]) {
			return rest
		}
	}
	return trimmed
}

func isAlphanumeric(c byte) bool {
	return isASCIILetter(c) || (c >= '0' && c <= '9')
}
