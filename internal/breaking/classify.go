// Package breaking holds the lexical breaking-news classifier and the
// alert throttle. Classification is deliberately precision-biased: a
// missed story costs nothing (the daily fetch still logs it), a false
// alert burns quota and trust.
package breaking

import "regexp"

// Vocabulary is the rule set for the classifier: three independent
// pattern groups kept as data so each group is testable and swappable
// on its own. A title is breaking iff it matches at least one entity
// pattern and at least one action pattern and no negative pattern.
type Vocabulary struct {
	Entities  []*regexp.Regexp
	Actions   []*regexp.Regexp
	Negatives []*regexp.Regexp
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// DefaultVocabulary returns the built-in AI-news rule set: named labs
// and models plus financial regulators as entities; launch/release/
// acquisition/shutdown/ban verbs as actions; partnership, hiring,
// podcast and funding chatter as negative signals.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Entities: compileAll([]string{
			`(?i)\b(anthropic|openai|open\s?ai|google\s?deepmind|deepmind|meta\s?ai|mistral|x\.?ai|grok)\b`,
			`(?i)\b(hkma|mas|sec|eu\s?ai\s?act|pboc)\b`,
			`(?i)\b(gpt[-\s]?\d|claude[-\s]?\d|gemini[-\s]?\d|llama[-\s]?\d|o[1-9][-\s]|sonnet|opus|haiku)\b`,
		}),
		Actions: compileAll([]string{
			`(?i)\b(launch(es|ed)?|releases?|released)`,
			`(?i)\b(introduc|announc|unveil)`,
			`(?i)\bopen.?sourc`,
			`(?i)\b(acquir|merg|shut.?down)`,
			`(?i)\b(bans?\b|mandat)`,
		}),
		Negatives: compileAll([]string{
			`(?i)\b(partner|collaborat)`,
			`(?i)\b(hiring|hire[sd]\b|recrui)`,
			`(?i)\b(podcast|interview|webinar)`,
			`(?i)\b(funding|round\b|series\s[a-d]\b)`,
		}),
	}
}

func anyMatch(patterns []*regexp.Regexp, title string) bool {
	for _, p := range patterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

// IsBreaking decides whether a title reads as breaking news. The
// negative group is a veto: it overrides an otherwise-qualifying title.
func (v *Vocabulary) IsBreaking(title string) bool {
	if !anyMatch(v.Entities, title) {
		return false
	}
	if !anyMatch(v.Actions, title) {
		return false
	}
	return !anyMatch(v.Negatives, title)
}
