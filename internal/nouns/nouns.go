// Package nouns renders character names and pronouns into templated
// message text, e.g. "{Address} hit {them} for 5 damage" becomes
// "Aris hit them for 5 damage".
package nouns

import "strings"

// Pronouns selects which pronoun set a Nouns substitutes.
type Pronouns uint8

const (
	Female Pronouns = iota
	Male
	Neutral
	Object
)

type forms struct {
	subject, object, possessive, reflexive string
	plural                                 bool
}

func (p Pronouns) forms() forms {
	switch p {
	case Female:
		return forms{"she", "her", "her", "herself", false}
	case Male:
		return forms{"he", "him", "his", "himself", false}
	case Object:
		return forms{"it", "it", "its", "itself", false}
	default: // Neutral
		return forms{"they", "them", "their", "themself", true}
	}
}

// Nouns identifies a character for the purpose of message rendering: a
// display name, whether that name is a proper noun, and its pronoun
// set. ProperName is carried as data only; no substitution in this
// package reads it.
type Nouns struct {
	Name       string
	ProperName bool
	Pronouns   Pronouns
}

// Address returns the name exactly as stored. No article ("the") is
// added, whatever ProperName says; a capitalized {Address} tag only
// upper-cases the name's first letter.
func (n Nouns) Address() string { return n.Name }

// They returns the subject pronoun ("they"/"she"/"he"/"it").
func (n Nouns) They() string { return n.Pronouns.forms().subject }

// Them returns the object pronoun.
func (n Nouns) Them() string { return n.Pronouns.forms().object }

// Their returns the possessive pronoun.
func (n Nouns) Their() string { return n.Pronouns.forms().possessive }

// Themself returns the reflexive pronoun.
func (n Nouns) Themself() string { return n.Pronouns.forms().reflexive }

// VerbSuffix returns "" for a plural-agreeing pronoun (they) or "s" for
// singular-agreeing pronouns (she/he/it), so templates can write
// "{they} hit{s}" and get "they hit" / "she hits".
func (n Nouns) VerbSuffix() string {
	if n.Pronouns.forms().plural {
		return ""
	}
	return "s"
}

// placeholder maps a bare template tag to the Nouns method that
// resolves it, for a subject named plainly (no namespace prefix).
var placeholders = map[string]func(Nouns) string{
	"name":     func(n Nouns) string { return n.Name },
	"address":  Nouns.Address,
	"they":     Nouns.They,
	"them":     Nouns.Them,
	"their":    Nouns.Their,
	"themself": Nouns.Themself,
	"s":        Nouns.VerbSuffix,
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ReplaceNouns substitutes every bare `{tag}` placeholder in template
// with the corresponding form of subject. A capitalized first letter in
// the template tag (`{Address}`, `{They}`) capitalizes the result, so a
// single table covers both sentence-initial and mid-sentence uses.
func ReplaceNouns(template string, subject Nouns) string {
	return replaceTags(template, "", subject)
}

// ReplacePrefixedNouns substitutes `{prefix_tag}` placeholders, where
// prefix names the role the subject plays in the message (for example
// "target_they", "caster_address"). Plain unprefixed tags are left
// untouched, so a message can combine ReplaceNouns for its speaker and
// ReplacePrefixedNouns once per additional participant.
func ReplacePrefixedNouns(template, prefix string, subject Nouns) string {
	return replaceTags(template, prefix, subject)
}

// replaceTags scans template for `{...}` spans and resolves any whose
// (optionally prefixed) tag name is known, leaving unrecognized spans
// untouched so templates can be layered (nouns, then combat numbers).
func replaceTags(template, prefix string, subject Nouns) string {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			b.WriteString(rest)
			break
		}
		close += open
		b.WriteString(rest[:open])
		tag := rest[open+1 : close]

		resolved, ok := resolveTag(tag, prefix, subject)
		if ok {
			b.WriteString(resolved)
		} else {
			b.WriteString(rest[open : close+1])
		}
		rest = rest[close+1:]
	}
	return b.String()
}

func resolveTag(tag, prefix string, subject Nouns) (string, bool) {
	name := tag
	if prefix != "" {
		p := prefix + "_"
		if !strings.HasPrefix(tag, p) {
			return "", false
		}
		name = tag[len(p):]
	}

	capitalize := name != "" && name[0] >= 'A' && name[0] <= 'Z'
	lookup := strings.ToLower(name)

	fn, ok := placeholders[lookup]
	if !ok {
		return "", false
	}
	out := fn(subject)
	if capitalize {
		out = titleCase(out)
	}
	return out, true
}
