// Package models provides the data structures used throughout the application.
package models

// NormalizedTransaction is a bank row after classification. Optional fields are
// empty strings when absent; the store writes them as NULL.
type NormalizedTransaction struct {
	RowID     int64  `csv:"-"`
	Acct      string `csv:"acct"`
	Date      string `csv:"date"` // YYYY-MM-DD
	Trans     string `csv:"trans"`
	CheckNo   string `csv:"checkno"`
	Txfr      string `csv:"txfr"`
	Payee     string `csv:"payee"`
	Category  string `csv:"category"`
	Note      string `csv:"note"`
	Desc1     string `csv:"desc1"`
	Desc2     string `csv:"desc2"`
	CaseNo    string `csv:"caseno"`
	Amount    Amount `csv:"amount"`
	OrigPayee string `csv:"OrigPayee"`
	OrigMemo  string `csv:"OrigMemo"`
}

// IsDebit reports whether money left the account.
func (t *NormalizedTransaction) IsDebit() bool {
	return t.Trans == TransDebit
}

// Year returns the YYYY prefix of the transaction date.
func (t *NormalizedTransaction) Year() string {
	if len(t.Date) < 4 {
		return ""
	}
	return t.Date[:4]
}

// Values returns the column values in TransactionColumns order.
func (t *NormalizedTransaction) Values() []string {
	return []string{
		t.Acct, t.Date, t.Trans, t.CheckNo, t.Txfr, t.Payee, t.Category, t.Note,
		t.Desc1, t.Desc2, t.CaseNo, t.Amount.String(), t.OrigPayee, t.OrigMemo,
	}
}

// ExportRow is a stored transaction as written to an export file.
type ExportRow struct {
	RowID    int64  `csv:"rowid"`
	Acct     string `csv:"acct"`
	Date     string `csv:"date"`
	Trans    string `csv:"trans"`
	CheckNo  string `csv:"checkno"`
	Txfr     string `csv:"txfr"`
	Payee    string `csv:"payee"`
	Category string `csv:"category"`
	Note     string `csv:"note"`
	CaseNo   string `csv:"caseno"`
	Amount   Amount `csv:"amount"`
}

// ToExportRow projects a stored transaction onto the export columns.
func (t *NormalizedTransaction) ToExportRow() ExportRow {
	return ExportRow{
		RowID:    t.RowID,
		Acct:     t.Acct,
		Date:     t.Date,
		Trans:    t.Trans,
		CheckNo:  t.CheckNo,
		Txfr:     t.Txfr,
		Payee:    t.Payee,
		Category: t.Category,
		Note:     t.Note,
		CaseNo:   t.CaseNo,
		Amount:   t.Amount,
	}
}
