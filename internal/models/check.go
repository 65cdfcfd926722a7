package models

// Check is a paper check recorded in the yearly work log.
type Check struct {
	Acct    string `csv:"acct"`
	CheckNo string `csv:"checkno"`
	Date    string `csv:"date"`
	Payee   string `csv:"payee"`
	Subject string `csv:"subject"`
	Purpose string `csv:"purpose"` // optional
	CaseNo  string `csv:"caseno"`
	Amount  Amount `csv:"amount"`
}
