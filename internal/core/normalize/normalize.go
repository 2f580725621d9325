// Package normalize folds anonymous group identifiers to one canonical form
// Pipeline order
// 1 Sanitize controls and invalid UTF-8
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove format chars
// 5 Width fold fullwidth to ASCII
// 6 Trim spaces and the root dot of a fully qualified domain
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF etc
			width.Fold,
		)
	},
}

// GroupID returns the canonical form of a group id such as an email domain
// "PSE.dev", " pse.dev. " and "ｐｓｅ.dev" all fold to "pse.dev"
func GroupID(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	ns = strings.TrimSpace(ns)
	return strings.TrimSuffix(ns, ".")
}

// SameGroup reports whether a and b name the same group
func SameGroup(a, b string) bool { return GroupID(a) == GroupID(b) }
