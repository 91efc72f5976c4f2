package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sort"
	"strconv"
)

// Table is an ordered, read-only set of rules. It is safe for concurrent use.
type Table struct {
	all         []Rule
	toTaralians []Rule
	toEnglish   []Rule
	fingerprint string
}

// NewTable validates rules and orders them by priority (highest first, ties
// in declaration order). Each concrete direction gets its own slice so the
// engine never filters at translation time.
func NewTable(rs []Rule) (*Table, error) {
	all := slices.Clone(rs)
	for _, r := range all {
		if err := validate(r); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority > all[j].Priority
	})

	t := &Table{all: all, fingerprint: fingerprint(all)}
	for _, dir := range []Direction{EnglishToTaralians, TaraliansToEnglish} {
		selected, err := partition(all, dir)
		if err != nil {
			return nil, err
		}
		if dir == EnglishToTaralians {
			t.toTaralians = selected
		} else {
			t.toEnglish = selected
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. It is meant for tables
// built from static data at init time.
func MustTable(rs []Rule) *Table {
	t, err := NewTable(rs)
	if err != nil {
		panic(err)
	}
	return t
}

func validate(r Rule) error {
	switch {
	case r.Direction != EnglishToTaralians && r.Direction != TaraliansToEnglish && r.Direction != Bidirectional:
		return &InvalidRuleError{Rule: r, Reason: "unknown direction"}
	case r.Source == "":
		return &InvalidRuleError{Rule: r, Reason: "empty source pattern"}
	case r.Direction == Bidirectional && r.Replacement == "":
		return &InvalidRuleError{Rule: r, Reason: "bidirectional rule needs a replacement to match in reverse"}
	}
	return nil
}

// partition selects the rules applying to dir in table order and checks that
// no effective pattern appears twice.
func partition(all []Rule, dir Direction) ([]Rule, error) {
	var selected []Rule
	seen := make(map[string]Rule)
	for _, r := range all {
		if !r.AppliesTo(dir) {
			continue
		}
		pattern, _ := r.Oriented(dir)
		key := foldKey(pattern)
		if prev, ok := seen[key]; ok {
			return nil, &AmbiguousRuleError{
				Direction: dir,
				Pattern:   pattern,
				First:     prev,
				Second:    r,
			}
		}
		seen[key] = r
		selected = append(selected, r)
	}
	return selected, nil
}

// Rules returns the rules used when translating in dir, in application order.
// A non-concrete direction returns every rule. The slice must not be modified.
func (t *Table) Rules(dir Direction) []Rule {
	switch dir {
	case EnglishToTaralians:
		return t.toTaralians
	case TaraliansToEnglish:
		return t.toEnglish
	default:
		return t.all
	}
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.all)
}

// Fingerprint identifies the table's behaviour: a hex SHA-256 over the
// ordered rules. Tables that translate identically share a fingerprint; where
// a rule came from does not count.
func (t *Table) Fingerprint() string {
	return t.fingerprint
}

func fingerprint(all []Rule) string {
	h := sha256.New()
	field := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}
	for _, r := range all {
		field(r.Direction.String())
		field(strconv.Itoa(r.Priority))
		field(strconv.FormatBool(r.Word))
		field(r.Source)
		field(r.Replacement)
	}
	return hex.EncodeToString(h.Sum(nil))
}
