package domain

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ResolveIATA maps free text to an IATA code. The first entry whose name,
// up to the first comma, occurs in the text wins; comparison ignores case
// and whitespace. Unmatched text is returned upper-cased without whitespace.
func ResolveIATA(entries []IATAEntry, freeText string) string {
	code, _ := LookupIATA(entries, freeText)
	return code
}

// LookupIATA is ResolveIATA that also reports whether an entry matched.
func LookupIATA(entries []IATAEntry, freeText string) (string, bool) {
	needle := compact(strings.ToLower(freeText))
	for _, e := range entries {
		name, _, _ := strings.Cut(e.Name, ",")
		name = compact(strings.ToLower(name))
		if name != "" && strings.Contains(needle, name) {
			return e.Acronym, true
		}
	}
	return strings.ToUpper(needle), false
}

// compact removes every whitespace rune.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// iataSeparator splits "FCO – Rome Fiumicino, Italy" lines extracted from the
// IATA reference PDF.
const iataSeparator = " – "

// ParseIATAList reads the text form of the IATA reference list. The first and
// last lines are page header and footer and are skipped.
func ParseIATAList(r io.Reader) ([]IATAEntry, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read iata list: %w", err)
	}
	if len(lines) < 3 {
		return nil, nil
	}

	entries := make([]IATAEntry, 0, len(lines)-2)
	for _, line := range lines[1 : len(lines)-1] {
		acronym, name, ok := strings.Cut(line, iataSeparator)
		if !ok {
			continue
		}
		acronym = compact(acronym)
		name = strings.TrimSpace(strings.ReplaceAll(name, iataSeparator, " "))
		if acronym == "" || name == "" {
			continue
		}
		entries = append(entries, IATAEntry{Acronym: acronym, Name: name})
	}
	return entries, nil
}
