package models

import (
	"errors"
	"regexp"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TransactionBuilder provides a fluent API for constructing normalized transactions,
// mostly for fixtures that bypass the bank CSV.
type TransactionBuilder struct {
	tx  NormalizedTransaction
	err error
}

// NewTransactionBuilder creates a builder for a debit with a zero amount.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: NormalizedTransaction{Trans: TransDebit},
	}
}

// WithAccount sets acct from a short or prefixed account code.
func (b *TransactionBuilder) WithAccount(code string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if code == "" {
		b.err = errors.New("account cannot be empty")
		return b
	}
	b.tx.Acct = AccountCode(code)
	return b
}

// WithDate sets the date, which must already be YYYY-MM-DD.
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if !isoDatePattern.MatchString(date) {
		b.err = errors.New("date must be YYYY-MM-DD")
		return b
	}
	b.tx.Date = date
	return b
}

// WithAmount parses and sets the amount magnitude.
func (b *TransactionBuilder) WithAmount(amount string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	a, err := ParseAmount(amount)
	if err != nil {
		b.err = err
		return b
	}
	b.tx.Amount = a
	return b
}

// WithPayee sets the payee
func (b *TransactionBuilder) WithPayee(payee string) *TransactionBuilder {
	b.tx.Payee = payee
	return b
}

// WithNote sets the note
func (b *TransactionBuilder) WithNote(note string) *TransactionBuilder {
	b.tx.Note = note
	return b
}

// WithCheckNo sets the check number
func (b *TransactionBuilder) WithCheckNo(checkNo string) *TransactionBuilder {
	b.tx.CheckNo = checkNo
	return b
}

// WithTxfr sets the transfer marker, e.g. "> usb_6831".
func (b *TransactionBuilder) WithTxfr(txfr string) *TransactionBuilder {
	b.tx.Txfr = txfr
	return b
}

// WithDescriptors sets desc1 and desc2
func (b *TransactionBuilder) WithDescriptors(desc1, desc2 string) *TransactionBuilder {
	b.tx.Desc1 = desc1
	b.tx.Desc2 = desc2
	return b
}

// WithOriginal sets the untouched bank Name and Memo.
func (b *TransactionBuilder) WithOriginal(payee, memo string) *TransactionBuilder {
	b.tx.OrigPayee = payee
	b.tx.OrigMemo = memo
	return b
}

// AsDebit marks the transaction as a debit
func (b *TransactionBuilder) AsDebit() *TransactionBuilder {
	b.tx.Trans = TransDebit
	return b
}

// AsCredit marks the transaction as a credit
func (b *TransactionBuilder) AsCredit() *TransactionBuilder {
	b.tx.Trans = TransCredit
	return b
}

// Build validates and returns the transaction.
func (b *TransactionBuilder) Build() (NormalizedTransaction, error) {
	if b.err != nil {
		return NormalizedTransaction{}, b.err
	}
	if b.tx.Acct == "" {
		return NormalizedTransaction{}, errors.New("account is required")
	}
	if b.tx.Date == "" {
		return NormalizedTransaction{}, errors.New("date is required")
	}
	return b.tx, nil
}

// MustBuild is Build for test fixtures. It panics on error.
func (b *TransactionBuilder) MustBuild() NormalizedTransaction {
	tx, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tx
}

// Clone creates a copy of the current builder state
func (b *TransactionBuilder) Clone() *TransactionBuilder {
	return &TransactionBuilder{tx: b.tx, err: b.err}
}
