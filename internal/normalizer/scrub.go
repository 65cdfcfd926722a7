package normalizer

import (
	"regexp"

	"wlharvey4/csv-sqlite3/internal/models"
)

// locationScrubs are applied in order, first match only, to payee and then note.
var locationScrubs = []*regexp.Regexp{
	regexp.MustCompile(`\s*portland\s{2,}or$|\s*vancouver\s{2,}wa.*$`),
	// nike company 019beaverton   or
	regexp.MustCompile(`\s\d{3}\w+\s{2,}or$`),
	// 650-4724100 ca, 855-576-4493wa
	regexp.MustCompile(`\s*[-\d]{5,}\s*\w{2}$`),
	// www.att.com tx, udemy online couhttpswww.udeca
	regexp.MustCompile(`(\s\w*https)?www.*$`),
	regexp.MustCompile(`\s*\w+\.com\s+\w{2}$`),
	regexp.MustCompile(`(?i)aws.amazon.cWA`),
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Scrub removes location and boilerplate suffixes from s and collapses runs of spaces.
func Scrub(s string) string {
	for _, re := range locationScrubs {
		s = replaceFirst(re, s, "")
	}
	return multiSpace.ReplaceAllString(s, " ")
}

func scrubRule() Rule {
	return Rule{
		Name:  "location-scrub",
		Match: always,
		Apply: func(tx *models.NormalizedTransaction, _ []string, _ Context) {
			tx.Payee = Scrub(tx.Payee)
			tx.Note = Scrub(tx.Note)
		},
	}
}
