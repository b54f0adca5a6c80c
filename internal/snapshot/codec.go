// Package snapshot implements the human-readable balance snapshot format:
// one "Name, 123đ" line per member. A legacy "Name=123đ" syntax from older
// exports is still accepted on parse; serialization emits only the canonical
// comma form.
package snapshot

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/orderhelper/vipledger/internal/domain"
)

var (
	// Canonical form: "Name, 500đ" (the đ suffix is optional on input).
	lineRe = regexp.MustCompile(`^([^,]+),\s*(-?\d+)đ?$`)

	// Legacy form: "Name=500đ".
	legacyRe = regexp.MustCompile(`^([^=]+)=\s*(-?\d+)\s*đ?$`)
)

// Member names sort by Vietnamese collation, matching how the list is shown.
var collator = collate.New(language.Vietnamese)

// Parse reads snapshot text into balances. Blank lines, comment lines
// (leading #) and lines matching neither syntax are silently skipped —
// integers only.
func Parse(text string) domain.Balances {
	balances := make(domain.Balances)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			m = legacyRe.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		bal, err := decimal.NewFromString(m[2])
		if err != nil {
			continue
		}
		balances[name] = bal
	}
	return balances
}

// Serialize renders balances as canonical snapshot text, one line per member,
// sorted ascending by name under Vietnamese collation. An empty mapping
// serializes to the empty string.
func Serialize(balances domain.Balances) string {
	if len(balances) == 0 {
		return ""
	}

	names := make([]string, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return collator.CompareString(names[i], names[j]) < 0
	})

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+", "+balances[name].StringFixed(0)+"đ")
	}
	return strings.Join(lines, "\n")
}
