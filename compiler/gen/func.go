package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules      = ruleset()
	acronyms   = make(map[string]struct{})
	titleCaser = cases.Title(language.Und, cases.NoLower)
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Initialisms taken from golint, plus database vocabulary.
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DB", "DNS", "EOF", "FK",
		"GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "PHB",
		"QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "TCP",
		"TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID",
		"VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	// Plural forms the default ruleset gets wrong for table names.
	rules.AddIrregular("person", "persons")
	return rules
}

// AddAcronym registers a word to keep fully uppercased by pascal and camel.
func AddAcronym(word string) {
	word = strings.ToUpper(word)
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

// AddSingularOverride registers an irregular plural/singular pair consulted
// by singular before the rule-based inflection.
func AddSingularOverride(plural, singularForm string) {
	rules.AddIrregular(singularForm, plural)
}

// snake converts a name to snake_case, keeping acronym runs as one word
// (HTTPCode becomes http_code, UserIDs stays user_ids).
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			prev := rune(s[i-1])
			switch {
			case unicode.IsLower(prev), unicode.IsDigit(prev):
				b.WriteRune('_')
			case unicode.IsUpper(prev) && i+1 < len(s) && unicode.IsLower(rune(s[i+1])):
				// End of an acronym run, unless the tail is just a plural "s".
				if !(s[i+1] == 's' && i+2 == len(s)) {
					b.WriteRune('_')
				}
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// pascal converts a snake_case or kebab-case name to PascalCase, uppercasing
// registered acronyms (user_id becomes UserID).
func pascal(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(pascalWord(w))
	}
	return b.String()
}

// camel converts a snake_case or kebab-case name to camelCase. The first
// word is always fully lowercased, acronym or not (http_code becomes
// httpCode, user_id becomes userID).
func camel(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(pascalWord(w))
	}
	return b.String()
}

// receiver derives a short receiver name from a type name: the lowercased
// first letter of each word (UserQuery becomes uq, HTTPClient becomes hc).
func receiver(s string) string {
	s = strings.TrimLeft(s, "[]*1234567890")
	var b strings.Builder
	for _, w := range strings.Split(snake(s), "_") {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return b.String()
}

// plural returns the plural form of a name. Names the ruleset considers
// already plural or uncountable get a Slice suffix to keep the result
// distinct.
func plural(s string) string {
	p := rules.Pluralize(s)
	if p == s {
		p += "Slice"
	}
	return p
}

// singular returns the singular form of a name, or the name itself when the
// ruleset has no singular for it.
func singular(s string) string {
	return rules.Singularize(s)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
}

func pascalWord(w string) string {
	if _, ok := acronyms[strings.ToUpper(w)]; ok {
		return strings.ToUpper(w)
	}
	return titleCaser.String(w)
}
