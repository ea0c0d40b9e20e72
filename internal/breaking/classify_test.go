package breaking

import "testing"

func TestIsBreaking(t *testing.T) {
	vocab := DefaultVocabulary()
	cases := []struct {
		title string
		want  bool
	}{
		// Entity + action, no negative signal.
		{"OpenAI released GPT-5 with new reasoning features", true},
		{"Anthropic launches Claude 4 for enterprise customers", true},
		{"EU AI Act mandates transparency for foundation models", true},
		{"DeepMind open-sources its weather model", true},

		// Negative-signal veto despite entity + action.
		{"Anthropic partners with startup on a webinar series", false},
		{"OpenAI announces new podcast interview series", false},
		{"Mistral announces Series B funding round", false},

		// No entity.
		{"Random product update with no entities mentioned", false},
		{"Startup launches revolutionary toaster", false},

		// Entity but no action.
		{"Claude 3 is pretty good at chess", false},
		{"Thoughts on OpenAI and the state of the industry", false},
	}
	for _, c := range cases {
		if got := vocab.IsBreaking(c.title); got != c.want {
			t.Errorf("IsBreaking(%q) = %v, want %v", c.title, got, c.want)
		}
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	vocab := DefaultVocabulary()
	if !vocab.IsBreaking("ANTHROPIC RELEASES NEW MODEL") {
		t.Error("uppercase title should still classify")
	}
	if !vocab.IsBreaking("anthropic releases new model") {
		t.Error("lowercase title should still classify")
	}
}

func TestVocabularyGroupsAreIndependent(t *testing.T) {
	// A vocabulary with no negatives must not veto anything.
	vocab := DefaultVocabulary()
	vocab.Negatives = nil
	if !vocab.IsBreaking("Anthropic launches a partner program") {
		t.Error("without negatives the title qualifies on entity+action")
	}

	// A vocabulary with no entities never fires.
	vocab = DefaultVocabulary()
	vocab.Entities = nil
	if vocab.IsBreaking("OpenAI released GPT-5") {
		t.Error("no entity patterns means nothing can qualify")
	}
}
