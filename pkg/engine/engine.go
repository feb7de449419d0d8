// Package engine resolves the output fields for one statement record:
// baseline initialization, configured defaults, then the ordered rule list.
// It is pure — no I/O, no shared state — so records can be transformed
// concurrently as long as the mappings config is treated as read-only.
package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xinyuanma/Bankstatements2iCost/pkg/mappings"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/models"
)

const (
	typeExpense = "支出"
	typeIncome  = "收入"

	defaultCurrency = "EUR"
	defaultLedger   = "默认账本"
)

// Initialize derives the baseline output fields from one statement record.
// It never fails: an amount that does not parse falls back to its
// normalized string form unchanged.
func Initialize(record models.Record) models.Fields {
	date := record.Get(models.ColEntryDate)
	if date == "" {
		date = record.Get(models.ColValueDate)
	}

	raw := record.Get(models.ColAmount)
	amount := NormalizeAmount(raw)
	if d, ok := ParseAmount(raw); ok {
		amount = d.Abs().StringFixed(2)
	}

	return models.Fields{
		Date:     date,
		Amount:   amount,
		Note:     record.Get(models.ColRecipient),
		Currency: defaultCurrency,
		Ledger:   defaultLedger,
	}
}

// Apply resolves the final output fields: defaults fill empty slots once,
// then every rule runs in declaration order, later matches overwriting
// earlier ones. A nil config leaves the fields untouched.
func Apply(out models.Fields, record models.Record, cfg *mappings.Config) models.Fields {
	if cfg == nil {
		return out
	}

	applyDefaults(&out, cfg.Defaults)

	amount, amountOK := ParseAmount(record.Get(models.ColAmount))
	ev := evaluator{
		record:   record,
		out:      &out,
		note:     strings.ToLower(out.Note),
		amount:   amount,
		amountOK: amountOK,
	}

	for _, rule := range cfg.Rules {
		if !ev.matchWhen(rule.When) {
			continue
		}
		if skipRule(rule, amount, amountOK) {
			continue
		}
		applyActions(&out, rule.Actions, amount, amountOK)
	}
	return out
}

func applyDefaults(out *models.Fields, d mappings.Defaults) {
	if out.Account1 == "" {
		out.Account1 = d.Account1
	}
	if out.Currency == "" {
		out.Currency = d.Currency
	}
	if out.Ledger == "" {
		out.Ledger = d.Ledger
	}
	if out.Tag == "" {
		out.Tag = d.Tag
	}
	if out.Category1 == "" {
		out.Category1 = d.Category1
	}
	if out.Category2 == "" {
		out.Category2 = d.Category2
	}
}

// vacationRule carries a fixed business exception: the rule only ever
// applies to expenses, whatever its condition says.
const vacationRule = "vacation-mode"

// skipRule is the post-match policy hook, keyed by rule name. Runs after a
// match is found and before actions are applied; future per-rule
// exceptions slot in here.
func skipRule(r mappings.Rule, amount decimal.Decimal, amountOK bool) bool {
	if r.Name != vacationRule {
		return false
	}
	return !amountOK || !amount.IsNegative()
}

func applyActions(out *models.Fields, a mappings.Actions, amount decimal.Decimal, amountOK bool) {
	if a.InferTypeFromAmount && out.Type == "" && amountOK {
		if amount.IsNegative() {
			out.Type = typeExpense
		} else {
			out.Type = typeIncome
		}
	}
	for key, value := range a.Set {
		setField(out, key, value)
	}
}

// setField assigns one output field by its display name or its logical
// name. Unknown keys are ignored.
func setField(out *models.Fields, key, value string) {
	switch key {
	case "类型", "type":
		out.Type = value
	case "一级分类", "category1":
		out.Category1 = value
	case "二级分类", "category2":
		out.Category2 = value
	case "账户1", "account1":
		out.Account1 = value
	case "账户2", "account2":
		out.Account2 = value
	case "备注", "note":
		out.Note = value
	case "货币", "currency":
		out.Currency = value
	case "标签", "tag":
		out.Tag = value
	case "账本", "ledger":
		out.Ledger = value
	}
}

// evaluator carries the per-record state shared by every condition check.
// note is a lower-cased snapshot taken before rule iteration: a rule that
// rewrites the note does not change what remark_contains sees for later
// rules, while recipient_contains reads the live note.
type evaluator struct {
	record   models.Record
	out      *models.Fields
	note     string
	amount   decimal.Decimal
	amountOK bool
}

func (e *evaluator) matchWhen(w mappings.When) bool {
	if w.Op == mappings.OpAll {
		for _, c := range w.Conds {
			if !e.eval(c) {
				return false
			}
		}
		return true
	}
	for _, c := range w.Conds {
		if e.eval(c) {
			return true
		}
	}
	return false
}

func (e *evaluator) eval(c mappings.Condition) bool {
	switch c.Kind {
	case mappings.KindDescriptionEquals:
		return strings.EqualFold(
			strings.TrimSpace(e.record.Get(models.ColDescription)),
			strings.TrimSpace(c.Text),
		)

	case mappings.KindCodeEquals:
		return strings.TrimSpace(e.record.Get(models.ColCode)) == c.Text

	case mappings.KindAmountExists:
		return strings.TrimSpace(e.record.Get(models.ColAmount)) != ""

	case mappings.KindRemarkContains:
		for _, kw := range c.Keywords {
			if strings.Contains(e.note, strings.ToLower(kw)) {
				return true
			}
		}
		return false

	case mappings.KindDateBetween:
		d, ok := e.recordDate()
		if !ok {
			return false
		}
		if c.Start != nil && d.Before(*c.Start) {
			return false
		}
		if c.End != nil && d.After(*c.End) {
			return false
		}
		return true

	case mappings.KindDateEquals:
		d, ok := e.recordDate()
		return ok && c.Date != nil && d.Equal(*c.Date)

	case mappings.KindAmountNegative:
		return e.amountOK && e.amount.IsNegative()

	case mappings.KindAmountPositive:
		return e.amountOK && e.amount.IsPositive()

	case mappings.KindRecipientContains:
		recipient := strings.ToLower(e.record.Get(models.ColRecipient))
		note := strings.ToLower(e.out.Note)
		for _, kw := range c.Keywords {
			k := strings.ToLower(kw)
			if strings.Contains(recipient, k) || strings.Contains(note, k) {
				return true
			}
		}
		return false

	case mappings.KindRecipientAccountContains:
		for col, val := range e.record {
			name := strings.ToLower(col)
			if !strings.Contains(name, "account") &&
				!strings.Contains(name, "iban") &&
				!strings.Contains(name, "bban") {
				continue
			}
			lower := strings.ToLower(val)
			for _, kw := range c.Keywords {
				if strings.Contains(lower, strings.ToLower(kw)) {
					return true
				}
			}
		}
		// Recipient/Payer is always probed as a fallback, matched columns
		// or not.
		recipient := strings.ToLower(e.record.Get(models.ColRecipient))
		for _, kw := range c.Keywords {
			if strings.Contains(recipient, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	}
	return false
}

// recordDate resolves the record's date for the date predicates:
// EntryDate, then ValueDate, then the already-initialized output date.
// Only the portion before the first whitespace is parsed.
func (e *evaluator) recordDate() (time.Time, bool) {
	v := e.record.Get(models.ColEntryDate)
	if v == "" {
		v = e.record.Get(models.ColValueDate)
	}
	if v == "" {
		v = e.out.Date
	}
	parts := strings.Fields(v)
	if len(parts) == 0 {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
