package models

// header holds the display names of the eleven output columns, in the order
// iCost expects them.
var header = []string{
	"日期",
	"类型",
	"金额",
	"一级分类",
	"二级分类",
	"账户1",
	"账户2",
	"备注",
	"货币",
	"标签",
	"账本",
}

// Fields holds the eleven resolved bookkeeping values for one record. A
// fresh value is created per record and discarded after writing; there is
// no cross-record state.
type Fields struct {
	Date      string
	Type      string
	Amount    string
	Category1 string
	Category2 string
	Account1  string
	Account2  string
	Note      string
	Currency  string
	Tag       string
	Ledger    string
}

// Header returns the output CSV header row.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Row returns the field values in output-column order.
func (f Fields) Row() []string {
	return []string{
		f.Date,
		f.Type,
		f.Amount,
		f.Category1,
		f.Category2,
		f.Account1,
		f.Account2,
		f.Note,
		f.Currency,
		f.Tag,
		f.Ledger,
	}
}
