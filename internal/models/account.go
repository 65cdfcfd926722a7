package models

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// DefaultAccounts returns the built-in account code to name mapping.
func DefaultAccounts() map[string]string {
	return map[string]string{
		"6815": "Business",
		"6831": "Trust",
		"6151": "Personal",
	}
}

// AccountCode turns a short code such as "6815" into the acct value "usb_6815".
// Codes that already carry the prefix are returned unchanged.
func AccountCode(code string) string {
	if strings.HasPrefix(code, AccountPrefix) {
		return code
	}
	return AccountPrefix + code
}

// ShortCode strips the acct prefix: "usb_6815" becomes "6815".
func ShortCode(acct string) string {
	return strings.TrimPrefix(acct, AccountPrefix)
}

// AccountRegistry is a read-only mapping of account codes to display names,
// with an optional allow-list of years.
type AccountRegistry struct {
	names map[string]string
	years map[string]struct{}
}

// NewAccountRegistry copies names and years into a registry. A nil or empty names
// map yields the defaults; an empty years list allows any four-digit year.
func NewAccountRegistry(names map[string]string, years []string) *AccountRegistry {
	if len(names) == 0 {
		names = DefaultAccounts()
	}
	r := &AccountRegistry{
		names: make(map[string]string, len(names)),
		years: make(map[string]struct{}, len(years)),
	}
	for code, name := range names {
		r.names[ShortCode(code)] = name
	}
	for _, y := range years {
		r.years[y] = struct{}{}
	}
	return r
}

// Name returns the display name for a short or prefixed account code.
func (r *AccountRegistry) Name(code string) (string, bool) {
	name, ok := r.names[ShortCode(code)]
	return name, ok
}

// Codes returns the known short codes in ascending order.
func (r *AccountRegistry) Codes() []string {
	codes := make([]string, 0, len(r.names))
	for code := range r.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ValidateAccount returns an error naming the known codes when code is unknown.
func (r *AccountRegistry) ValidateAccount(code string) error {
	if _, ok := r.Name(code); !ok {
		return fmt.Errorf("unknown account %q (known: %s)", code, strings.Join(r.Codes(), ", "))
	}
	return nil
}

// ValidateYear checks that year has four digits and is allowed by the registry.
func (r *AccountRegistry) ValidateYear(year string) error {
	if !yearPattern.MatchString(year) {
		return fmt.Errorf("invalid year %q: want YYYY", year)
	}
	if len(r.years) == 0 {
		return nil
	}
	if _, ok := r.years[year]; !ok {
		return fmt.Errorf("year %s is not in the configured years", year)
	}
	return nil
}
