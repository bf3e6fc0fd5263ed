package ingest

import "strings"

type ruleKind int

const (
	ruleWildcard ruleKind = iota // "image/*": any MIME in the category
	ruleMime                     // exact MIME match
	ruleExt                      // filename suffix match, ".jpg"
)

// Rule is one entry of the accepted-types allow-list.
type Rule struct {
	kind  ruleKind
	value string
}

// ParseAccept splits a comma-separated allow-list into rules. Rule values
// are lowercased; empty entries are dropped.
func ParseAccept(accept string) []Rule {
	parts := strings.Split(accept, ",")
	rules := make([]Rule, 0, len(parts))
	for _, part := range parts {
		value := strings.ToLower(strings.TrimSpace(part))
		if value == "" {
			continue
		}
		switch {
		case strings.HasSuffix(value, "/*"):
			rules = append(rules, Rule{kind: ruleWildcard, value: strings.TrimSuffix(value, "/*")})
		case strings.HasPrefix(value, "."):
			rules = append(rules, Rule{kind: ruleExt, value: value})
		default:
			rules = append(rules, Rule{kind: ruleMime, value: value})
		}
	}
	return rules
}

// Matches reports whether the rule accepts the given declared MIME and
// filename, both expected lowercased by the caller.
func (r Rule) Matches(mime, name string) bool {
	switch r.kind {
	case ruleWildcard:
		return strings.HasPrefix(mime, r.value+"/")
	case ruleMime:
		return mime == r.value
	case ruleExt:
		return strings.HasSuffix(name, r.value)
	}
	return false
}

// matchAccept reports whether at least one rule accepts the file.
func matchAccept(rules []Rule, mime, name string) bool {
	mime = NormalizeMime(mime)
	name = strings.ToLower(strings.TrimSpace(name))
	for _, rule := range rules {
		if rule.Matches(mime, name) {
			return true
		}
	}
	return false
}
