package normalizer

import (
	"regexp"
	"strings"

	"wlharvey4/csv-sqlite3/internal/models"
)

// Literal labels written by the rules.
const (
	payeeBank = "usbank"
	payeeCash = "cash"
	payeeWes  = "Wes Bos"
)

// Rule is one classification step. Match returns the capture groups (index 0 is the
// whole match) or nil when the rule does not apply; Apply mutates the transaction
// using only those groups and the run context.
type Rule struct {
	Name  string
	Match func(tx *models.NormalizedTransaction) []string
	Apply func(tx *models.NormalizedTransaction, groups []string, rc Context)
}

// DefaultRules returns the classification rules in the order they must run.
// Rules before the location scrub are conditional; the scrub, vendor and
// abbreviation rules look at every row.
func DefaultRules() []Rule {
	return []Rule{
		checkRule(),
		returnedItemRule(),
		internalTransferRule(),
		cardPurchaseRule(),
		knownBillerRule(),
		depositWithdrawalRule(),
		personToPersonRule(),
		feeRule(),
		scrubRule(),
		knownVendorRule(),
		abbreviationRule(),
	}
}

func matchPayee(re *regexp.Regexp) func(*models.NormalizedTransaction) []string {
	return func(tx *models.NormalizedTransaction) []string {
		return re.FindStringSubmatch(tx.Payee)
	}
}

func always(*models.NormalizedTransaction) []string {
	return []string{}
}

// joinTags joins the non-empty parts with single spaces.
func joinTags(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

var (
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	firstDigits = regexp.MustCompile(`\d+`)
)

func checkRule() Rule {
	return Rule{
		Name: "check",
		Match: func(tx *models.NormalizedTransaction) []string {
			if tx.Payee != "check" {
				return nil
			}
			return []string{tx.Payee}
		},
		Apply: func(tx *models.NormalizedTransaction, _ []string, _ Context) {
			number := ""
			if digitsOnly.MatchString(tx.Trans) {
				number = tx.Trans
			} else {
				number = firstDigits.FindString(tx.Note)
			}
			if number != "" {
				number = strings.TrimLeft(number, "0")
				if number == "" {
					number = "0"
				}
			}

			tx.CheckNo = number
			tx.Trans = models.TransDebit
			tx.Payee = "(" + number + ") check"
			tx.Note += "Purchase by check no. " + number
			tx.Desc1 = "purchase"
			tx.Desc2 = "check"
		},
	}
}

var returnedItem = regexp.MustCompile(`(returned) (item)|(item) (returned)`)

func returnedItemRule() Rule {
	return Rule{
		Name:  "returned-item",
		Match: matchPayee(returnedItem),
		Apply: func(tx *models.NormalizedTransaction, _ []string, _ Context) {
			tx.Desc1 = "item"
			tx.Desc2 = "returned"
			tx.Payee = payeeBank
			tx.Note = tx.Desc2 + " " + tx.Desc1
		},
	}
}

var internalTransfer = regexp.MustCompile(`(internet|mobile) (banking) transfer (deposit|withdrawal) (\d{4})\s*$`)

func internalTransferRule() Rule {
	return Rule{
		Name:  "internal-transfer",
		Match: matchPayee(internalTransfer),
		Apply: func(tx *models.NormalizedTransaction, g []string, rc Context) {
			channel, direction, other := g[1], g[3], models.AccountCode(g[4])

			tx.Desc1 = direction
			tx.Desc2 = channel
			if direction == "deposit" {
				tx.Txfr = "< " + other
			} else {
				tx.Txfr = "> " + other
			}

			tofrom := "from"
			counterparty := rc.OwnAccount()
			if tx.IsDebit() {
				tofrom = "to"
				counterparty = other
			}

			tx.Note = strings.TrimRight(tx.Desc2+" "+tx.Desc1+": transfer "+tofrom+" "+tx.Note, " ")
			if strings.HasPrefix(tx.Txfr, ">") {
				tx.Payee = "Transfer to " + counterparty + " from " + tx.Acct
			} else {
				tx.Payee = "Transfer to " + counterparty + " from " + other
			}
		},
	}
}

var cardPurchase = regexp.MustCompile(`debit (purchase)\s*-?\s*(visa)? `)

func cardPurchaseRule() Rule {
	return Rule{
		Name:  "card-purchase",
		Match: matchPayee(cardPurchase),
		Apply: func(tx *models.NormalizedTransaction, g []string, _ Context) {
			tx.Desc1 = g[1]
			tx.Desc2 = g[2]
			tx.Payee = strings.Replace(tx.Payee, g[0], "", 1)
			tx.Note = joinTags(tx.Desc2, tx.Desc1, tx.Note)
		},
	}
}

var knownBiller = regexp.MustCompile(`^.*(state bar of ca)`)

func knownBillerRule() Rule {
	return Rule{
		Name:  "known-biller",
		Match: matchPayee(knownBiller),
		Apply: func(tx *models.NormalizedTransaction, g []string, _ Context) {
			tx.Payee = g[1]
		},
	}
}

var (
	depositWithdrawal = regexp.MustCompile(`(web authorized) (pmt) |(atm|electronic|mobile)?\s*(check|rdc)?\s*(deposit|withdrawal)\s*(.*)?`)
	paypal            = regexp.MustCompile(`paypal`)
)

// depositWithdrawalRule keeps the literal precedence of its overlapping groups:
// desc1 is the first of pmt, check|rdc, deposit|withdrawal that matched, and desc2
// the first of web authorized, atm|electronic|mobile.
func depositWithdrawalRule() Rule {
	return Rule{
		Name:  "deposit-withdrawal",
		Match: matchPayee(depositWithdrawal),
		Apply: func(tx *models.NormalizedTransaction, g []string, rc Context) {
			tx.Desc1 = firstNonEmpty(g[2], g[4], g[5])
			tx.Desc2 = firstNonEmpty(g[1], g[3])

			switch {
			case g[3] == "atm" || g[3] == "electronic" || g[3] == "mobile" || g[5] == "deposit":
				if g[5] == "deposit" {
					tx.Payee = rc.OwnAccount()
				} else {
					tx.Payee = payeeCash
				}
			default:
				tx.Payee = strings.Replace(tx.Payee, g[0], "", 1)
			}

			prefix := joinTags(tx.Desc2, tx.Desc1)
			if m := paypal.FindString(tx.Note); m != "" && tx.Trans == models.TransCredit {
				tx.Txfr = "< " + m
				prefix += " from"
			}
			tx.Note = strings.TrimRight(prefix+" "+tx.Note, " \t")
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var personToPerson = regexp.MustCompile(`(zelle instant) (pmt) (from (\w+\s\w+))\s(.*)$`)

func personToPersonRule() Rule {
	return Rule{
		Name:  "person-to-person",
		Match: matchPayee(personToPerson),
		Apply: func(tx *models.NormalizedTransaction, g []string, rc Context) {
			tx.Desc1 = g[2]
			tx.Desc2 = g[1]
			tx.Note = tx.Desc2 + " " + tx.Desc1 + " " + g[3]
			tx.Payee = rc.OwnAccount()
		},
	}
}

var fee = regexp.MustCompile(`(overdraft|international) (paid|processing) (fee)`)

func feeRule() Rule {
	return Rule{
		Name:  "fee",
		Match: matchPayee(fee),
		Apply: func(tx *models.NormalizedTransaction, g []string, _ Context) {
			tx.Desc1 = g[3]
			tx.Desc2 = g[1] + " " + g[2]
			tx.Payee = payeeBank
			tx.Note = tx.Desc2 + " " + tx.Desc1 + " to " + tx.Payee
		},
	}
}

var knownVendor = regexp.MustCompile(`(bostype / wes bo)(hamilton\s+on)`)

func knownVendorRule() Rule {
	return Rule{
		Name:  "known-vendor",
		Match: matchPayee(knownVendor),
		Apply: func(tx *models.NormalizedTransaction, g []string, _ Context) {
			tx.Payee = payeeWes
			tx.Note = strings.Replace(tx.Note, g[1], payeeWes, 1)
			tx.Note = strings.Replace(tx.Note, g[2], "", 1)
		},
	}
}

var squareAbbrev = regexp.MustCompile(`\bsq\b`)

func abbreviationRule() Rule {
	return Rule{
		Name:  "abbreviation",
		Match: always,
		Apply: func(tx *models.NormalizedTransaction, _ []string, _ Context) {
			tx.Payee = replaceFirst(squareAbbrev, tx.Payee, "square")
			tx.Note = replaceFirst(squareAbbrev, tx.Note, "square")
		},
	}
}
