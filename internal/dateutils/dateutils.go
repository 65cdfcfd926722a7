// Package dateutils parses the date formats found in bank exports and work logs
// and renders them in the ISO form stored everywhere else.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutUS       = "1/2/2006"
	DateLayoutUSPadded = "01/02/2006"
	DateLayoutSlashISO = "2006/01/02"
)

// BankFormats lists the layouts tried, in order, for a bank export date.
var BankFormats = []string{
	DateLayoutUS,
	DateLayoutUSPadded,
	DateLayoutISO,
	DateLayoutSlashISO,
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseBankDate parses a bank export date such as "1/2/2020" or "2020-01-02".
func ParseBankDate(dateStr string) (time.Time, error) {
	cleaned := CleanDateString(dateStr)
	for _, layout := range BankFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", dateStr)
}

// NormalizeBankDate parses a bank date and returns it as YYYY-MM-DD.
func NormalizeBankDate(dateStr string) (string, error) {
	t, err := ParseBankDate(dateStr)
	if err != nil {
		return "", err
	}
	return ToISODate(t), nil
}

// ParseISODate parses a YYYY-MM-DD date.
func ParseISODate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayoutISO, strings.TrimSpace(dateStr))
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// InYear reports whether an ISO date falls in the four-digit year.
func InYear(isoDate, year string) bool {
	return strings.HasPrefix(isoDate, year+"-")
}

// YearPattern returns the LIKE pattern selecting all ISO dates of a year.
func YearPattern(year string) string {
	return year + "%"
}

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
