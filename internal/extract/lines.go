package extract

import "strings"

// leadingSeparators are stripped from the front of a target line after the
// label itself is removed. Fixed set, not a general regex strip.
const leadingSeparators = ":;- \t"

// TargetLine selects and prepares the raw value text for one field pattern.
//
// The target index is labelLine + offset, unclamped: negative offsets walk
// upward, positive downward, zero stays on the label's line. Out-of-bounds
// targets and blank lines yield ok == false.
//
// At offset zero the label is located again within the target line and
// everything through the label is stripped, followed by leading separator
// characters. Non-zero offsets keep the whole trimmed line.
//
// A size greater than zero truncates the prepared text to its first size
// characters, whatever the offset was.
func TargetLine(lines []string, labelLine int, label string, offset, size int) (string, bool) {
	target := labelLine + offset
	if target < 0 || target >= len(lines) {
		return "", false
	}

	line := strings.TrimSpace(lines[target])
	if line == "" {
		return "", false
	}

	if offset == 0 {
		if idx := strings.Index(line, label); idx >= 0 {
			line = line[idx+len(label):]
		}
		line = strings.TrimLeft(line, leadingSeparators)
		if line == "" {
			return "", false
		}
	}

	// Size counts characters, not bytes; diacritics must not be split.
	if size > 0 {
		if runes := []rune(line); len(runes) > size {
			line = string(runes[:size])
		}
	}
	return line, true
}
