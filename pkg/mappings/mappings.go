// Package mappings loads the user-editable rule file (mappings.yaml) that
// drives transaction classification. The loose YAML surface is decoded
// eagerly into typed conditions so malformed entries fail at load time
// instead of silently never matching.
package mappings

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the deserialized rule file.
type Config struct {
	Defaults Defaults `yaml:"defaults"`
	Rules    []Rule   `yaml:"rules"`
}

// Defaults are fallback values applied once before any rule runs, and only
// to output fields that are still empty at that point.
type Defaults struct {
	Account1  string `yaml:"account1"`
	Currency  string `yaml:"currency"`
	Ledger    string `yaml:"ledger"`
	Tag       string `yaml:"tag"`
	Category1 string `yaml:"category1"`
	Category2 string `yaml:"category2"`
}

// Rule pairs a condition with the actions applied on a match. Name is
// optional and only significant for rules carrying a business exception
// (see the engine's policy hook).
type Rule struct {
	Name    string  `yaml:"name"`
	When    When    `yaml:"when"`
	Actions Actions `yaml:"actions"`
}

// Actions describes what a matching rule does to the output fields. Set
// keys are field names — the CJK display names the rule files use, or the
// English logical names — and unknown keys are ignored.
type Actions struct {
	InferTypeFromAmount bool              `yaml:"infer_type_from_amount"`
	Set                 map[string]string `yaml:"set"`
}

// Op is the boolean combinator of a composite condition.
type Op int

const (
	OpAny Op = iota
	OpAll
)

// When is a rule condition, normalized at decode time to a conjunction or
// disjunction of atomic conditions.
//
// The legacy form — simple keys placed directly under `when` with no
// all/any wrapper — is an implicit OR across those keys, not an AND.
// Existing rule files depend on that, so it is preserved exactly even
// though authors tend to expect AND.
type When struct {
	Op    Op
	Conds []Condition
}

// Kind discriminates the condition variants, listed in evaluation
// precedence order.
type Kind int

const (
	KindNone Kind = iota
	KindDescriptionEquals
	KindCodeEquals
	KindAmountExists
	KindRemarkContains
	KindDateBetween
	KindDateEquals
	KindAmountNegative
	KindAmountPositive
	KindRecipientContains
	KindRecipientAccountContains
)

// Condition is one atomic predicate. Exactly one variant is active: a map
// carrying several recognized keys keeps the highest-precedence one, and a
// map carrying none decodes to KindNone, which never matches.
type Condition struct {
	Kind     Kind
	Text     string     // description_equals, code_equals
	Keywords []string   // remark_contains, recipient_contains, recipient_account_contains
	Start    *time.Time // date_between lower bound
	End      *time.Time // date_between upper bound
	Date     *time.Time // date_equals
}

// Load reads a mappings file. A missing file is not an error: the engine
// then runs with no rules and the built-in fallbacks only.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mappings yaml: %w", err)
	}
	return &cfg, nil
}

// ApplyOverrides layers non-empty runtime overrides (from flags or the
// environment) over the defaults block. Called on a nil Config it allocates
// one, so overrides still take effect when no mappings file exists.
func (c *Config) ApplyOverrides(account1, currency string) *Config {
	if account1 == "" && currency == "" {
		return c
	}
	if c == nil {
		c = &Config{}
	}
	if account1 != "" {
		c.Defaults.Account1 = account1
	}
	if currency != "" {
		c.Defaults.Currency = currency
	}
	return c
}

// UnmarshalYAML normalizes the three accepted condition shapes: an
// explicit `all` or `any` list, the legacy implicit-OR form, or a bare
// single-key condition used without a wrapper.
func (w *When) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rule condition must be a mapping", node.Line)
	}

	pairs := mappingPairs(node)

	if list, ok := pairs["all"]; ok {
		w.Op = OpAll
		return list.Decode(&w.Conds)
	}
	if list, ok := pairs["any"]; ok {
		w.Op = OpAny
		return list.Decode(&w.Conds)
	}

	w.Op = OpAny

	// Legacy form: each simple key present directly under `when` becomes
	// one branch of an OR group. amount_exists only counts when truthy.
	var legacy []Condition
	if v, ok := pairs["description_equals"]; ok {
		legacy = append(legacy, Condition{Kind: KindDescriptionEquals, Text: scalarString(v)})
	}
	if v, ok := pairs["code_equals"]; ok {
		legacy = append(legacy, Condition{Kind: KindCodeEquals, Text: scalarString(v)})
	}
	if v, ok := pairs["amount_exists"]; ok && truthy(v) {
		legacy = append(legacy, Condition{Kind: KindAmountExists})
	}
	if v, ok := pairs["remark_contains"]; ok {
		kws, err := stringList(v)
		if err != nil {
			return err
		}
		legacy = append(legacy, Condition{Kind: KindRemarkContains, Keywords: kws})
	}
	if len(legacy) > 0 {
		w.Conds = legacy
		return nil
	}

	// No simple key matched: the whole map is one atomic condition, which
	// covers single-key forms like a bare date_between.
	var c Condition
	if err := node.Decode(&c); err != nil {
		return err
	}
	w.Conds = []Condition{c}
	return nil
}

// UnmarshalYAML decodes an atomic condition map, claiming the first
// recognized key in precedence order and ignoring the rest.
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: condition must be a mapping", node.Line)
	}

	pairs := mappingPairs(node)

	if v, ok := pairs["description_equals"]; ok {
		c.Kind = KindDescriptionEquals
		c.Text = scalarString(v)
		return nil
	}
	if v, ok := pairs["code_equals"]; ok {
		c.Kind = KindCodeEquals
		c.Text = scalarString(v)
		return nil
	}
	if v, ok := pairs["amount_exists"]; ok && truthy(v) {
		c.Kind = KindAmountExists
		return nil
	}
	if v, ok := pairs["remark_contains"]; ok {
		kws, err := stringList(v)
		if err != nil {
			return err
		}
		c.Kind = KindRemarkContains
		c.Keywords = kws
		return nil
	}
	if v, ok := pairs["date_between"]; ok {
		var bounds struct {
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		}
		if err := v.Decode(&bounds); err != nil {
			return fmt.Errorf("line %d: date_between: %w", v.Line, err)
		}
		c.Kind = KindDateBetween
		var err error
		if c.Start, err = optionalDate(bounds.Start); err != nil {
			return fmt.Errorf("line %d: date_between start: %w", v.Line, err)
		}
		if c.End, err = optionalDate(bounds.End); err != nil {
			return fmt.Errorf("line %d: date_between end: %w", v.Line, err)
		}
		return nil
	}
	if v, ok := pairs["date_equals"]; ok {
		d, err := optionalDate(scalarString(v))
		if err != nil || d == nil {
			return fmt.Errorf("line %d: date_equals needs a YYYY-MM-DD date", v.Line)
		}
		c.Kind = KindDateEquals
		c.Date = d
		return nil
	}
	if _, ok := pairs["amount_negative"]; ok {
		c.Kind = KindAmountNegative
		return nil
	}
	if _, ok := pairs["amount_positive"]; ok {
		c.Kind = KindAmountPositive
		return nil
	}
	if v, ok := pairs["recipient_contains"]; ok {
		kws, err := stringList(v)
		if err != nil {
			return err
		}
		c.Kind = KindRecipientContains
		c.Keywords = kws
		return nil
	}
	if v, ok := pairs["recipient_account_contains"]; ok {
		kws, err := stringList(v)
		if err != nil {
			return err
		}
		c.Kind = KindRecipientAccountContains
		c.Keywords = kws
		return nil
	}

	// Unrecognized conditions never match; keeping them non-fatal leaves
	// room for newer rule files to run against older binaries.
	c.Kind = KindNone
	return nil
}

func mappingPairs(node *yaml.Node) map[string]*yaml.Node {
	pairs := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs[node.Content[i].Value] = node.Content[i+1]
	}
	return pairs
}

// scalarString returns the literal text of a scalar node, which
// string-coerces unquoted numbers the way rule files expect
// (code_equals: 710 matches the column value "710").
func scalarString(node *yaml.Node) string {
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	return ""
}

func truthy(node *yaml.Node) bool {
	var b bool
	if err := node.Decode(&b); err == nil {
		return b
	}
	var i int
	if err := node.Decode(&i); err == nil {
		return i != 0
	}
	return node.Kind == yaml.ScalarNode && node.Value != ""
}

// stringList accepts a sequence of scalars or a single scalar.
func stringList(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: keyword list items must be strings", item.Line)
			}
			out = append(out, item.Value)
		}
		return out, nil
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	default:
		return nil, fmt.Errorf("line %d: expected a keyword or list of keywords", node.Line)
	}
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
