package models

// Column headers of the US Bank CSV export.
const (
	ColDate        = "Date"
	ColTransaction = "Transaction"
	ColName        = "Name"
	ColMemo        = "Memo"
	ColAmount      = "Amount"
)

// RequiredSourceColumns lists the header columns every bank export must carry.
var RequiredSourceColumns = []string{ColDate, ColTransaction, ColName, ColMemo, ColAmount}

// Transaction directions as they appear in the trans column.
const (
	TransDebit  = "debit"
	TransCredit = "credit"
)

// AccountPrefix is prepended to a short account code to form the acct column value.
const AccountPrefix = "usb_"

// File permissions
const (
	PermissionDirectory = 0750
	PermissionDataFile  = 0644
)

// TransactionColumns is the canonical column order of a normalized transaction,
// shared by the CSV mirror header and the usb table.
var TransactionColumns = []string{
	"acct", "date", "trans", "checkno", "txfr", "payee", "category", "note",
	"desc1", "desc2", "caseno", "amount", "OrigPayee", "OrigMemo",
}

// ExportColumns is the column order of an export file.
var ExportColumns = []string{
	"rowid", "acct", "date", "trans", "checkno", "txfr", "payee", "category", "note",
	"caseno", "amount",
}

// CheckColumns is the column order of the checks table.
var CheckColumns = []string{
	"acct", "checkno", "date", "payee", "subject", "purpose", "caseno", "amount",
}
