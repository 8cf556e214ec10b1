package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Month tables for textual dates, Romanian first (the product's home
// market), then English. Index + 1 is the month number.
var (
	romanianMonths = []string{
		"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
		"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie",
	}
	englishMonths = []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
)

var (
	textualDateRe = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	numericDateRe = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})`)
)

// NormalizeDate renders the first recognizable date in the line as
// DD/MM/YYYY. It tries "DD <month name> YYYY" with Romanian then English
// month names (case-insensitive, diacritics folded), then numeric
// D.M.Y / D/M/Y / D-M-Y forms. Two-digit years below 50 land in the 2000s,
// the rest in the 1900s. Unrecognized lines pass through unchanged.
func NormalizeDate(line string) string {
	if m := textualDateRe.FindStringSubmatch(line); m != nil {
		if month, ok := monthNumber(m[2]); ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
		}
	}

	if m := numericDateRe.FindStringSubmatch(line); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
	}

	return line
}

func monthNumber(name string) (int, bool) {
	folded := strings.ToLower(foldDiacritics(name))
	for i, m := range romanianMonths {
		if folded == m {
			return i + 1, true
		}
	}
	for i, m := range englishMonths {
		if folded == m {
			return i + 1, true
		}
	}
	return 0, false
}
