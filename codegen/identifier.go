package codegen

import (
	"strconv"
	"strings"
)

// reserved names the emitted Python text uses for its own plumbing.
var reservedIdentifiers = []string{"run", "run_program", "run_model", "x", "print", "enumerate"}

// pythonKeywords cannot appear in binding position.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// sanitizeIdentifier derives a Python identifier from an arbitrary string:
// non-alphanumeric runes become underscores and a leading digit is prefixed.
func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "node"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n_" + out
	}
	if pythonKeywords[out] {
		out += "_"
	}
	return out
}

// identTable assigns deterministic, collision-free identifiers. Identifiers
// are handed out in call order, so the same graph always yields the same
// names.
type identTable struct {
	used  map[string]bool
	byKey map[string]string
}

func newIdentTable() *identTable {
	t := &identTable{
		used:  make(map[string]bool),
		byKey: make(map[string]string),
	}
	for _, r := range reservedIdentifiers {
		t.used[r] = true
	}
	return t
}

// assign derives an identifier from raw, suffixes it until unique, and
// remembers it under key.
func (t *identTable) assign(key, raw string) string {
	if ident, ok := t.byKey[key]; ok {
		return ident
	}
	base := sanitizeIdentifier(raw)
	ident := base
	for i := 2; t.used[ident]; i++ {
		ident = base + "_" + strconv.Itoa(i)
	}
	t.used[ident] = true
	t.byKey[key] = ident
	return ident
}

// lookup returns the identifier previously assigned under key.
func (t *identTable) lookup(key string) (string, bool) {
	ident, ok := t.byKey[key]
	return ident, ok
}
