// Package normalizer turns raw bank rows into normalized transactions: a baseline
// column mapping followed by an ordered list of classification rules.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"wlharvey4/csv-sqlite3/internal/dateutils"
	"wlharvey4/csv-sqlite3/internal/models"
	"wlharvey4/csv-sqlite3/internal/parsererror"
)

const parserName = "normalizer"

var downloadBanner = regexp.MustCompile(`Download from usbank.com.\s*`)

// Context is the per-run information rules may read. It never changes during a run.
type Context struct {
	Code string // short account code, e.g. "6815"
	Acct string // prefixed account, e.g. "usb_6815"
	Year string
}

// OwnAccount is the acct value of the account being imported.
func (c Context) OwnAccount() string {
	return c.Acct
}

// Transformer is a pure function of (RawRecord, account, year).
type Transformer struct {
	ctx   Context
	rules []Rule
}

// NewTransformer binds the default rule list to an account code and year.
func NewTransformer(code, year string) *Transformer {
	return NewTransformerWithRules(code, year, DefaultRules())
}

// NewTransformerWithRules binds an explicit rule list, applied in slice order.
func NewTransformerWithRules(code, year string, rules []Rule) *Transformer {
	code = models.ShortCode(code)
	return &Transformer{
		ctx: Context{
			Code: code,
			Acct: models.AccountCode(code),
			Year: year,
		},
		rules: rules,
	}
}

// Context returns the run context the transformer was built with.
func (t *Transformer) Context() Context {
	return t.ctx
}

// Rules returns the names of the rules in application order.
func (t *Transformer) Rules() []string {
	names := make([]string, len(t.rules))
	for i, r := range t.rules {
		names[i] = r.Name
	}
	return names
}

// Transform maps one raw row to a normalized transaction. A bad date or amount
// yields a *parsererror.ParseError.
func (t *Transformer) Transform(raw models.RawRecord) (models.NormalizedTransaction, error) {
	tx, err := t.baseline(raw)
	if err != nil {
		return models.NormalizedTransaction{}, err
	}
	for _, rule := range t.rules {
		if groups := rule.Match(&tx); groups != nil {
			rule.Apply(&tx, groups, t.ctx)
		}
	}
	return tx, nil
}

func (t *Transformer) baseline(raw models.RawRecord) (models.NormalizedTransaction, error) {
	date, err := dateutils.NormalizeBankDate(raw.Get(models.ColDate))
	if err != nil {
		return models.NormalizedTransaction{}, &parsererror.ParseError{
			Parser: parserName,
			Field:  models.ColDate,
			Value:  raw.Get(models.ColDate),
			Err:    err,
		}
	}

	amount, err := models.ParseAmount(raw.Get(models.ColAmount))
	if err != nil {
		return models.NormalizedTransaction{}, &parsererror.ParseError{
			Parser: parserName,
			Field:  models.ColAmount,
			Value:  raw.Get(models.ColAmount),
			Err:    fmt.Errorf("not a number: %w", err),
		}
	}

	name := raw.Get(models.ColName)
	memo := raw.Get(models.ColMemo)

	return models.NormalizedTransaction{
		Acct:      t.ctx.Acct,
		Date:      date,
		Trans:     strings.ToLower(strings.TrimSpace(raw.Get(models.ColTransaction))),
		Payee:     strings.TrimRight(strings.ToLower(name), " \t\r\n"),
		Note:      strings.ToLower(replaceFirst(downloadBanner, memo, "")),
		Amount:    amount,
		OrigPayee: name,
		OrigMemo:  memo,
	}, nil
}

// replaceFirst replaces the first match of re in s with repl, taken literally.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
