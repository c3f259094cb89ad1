package keywords

import "testing"

func TestDisabledAcceptsEverything(t *testing.T) {
	pred := NewPredicate(false, false, nil)
	for _, text := range []string{"", "anything at all", "тока не японское"} {
		if !pred(text) {
			t.Errorf("disabled predicate rejected %q", text)
		}
	}
}

func TestEnabledUsesDefaults(t *testing.T) {
	pred := NewPredicate(true, false, nil)

	if !pred("Amazing street food in TOKYO today") {
		t.Error("should match default keyword case-insensitively")
	}
	if pred("a video about something else entirely") {
		t.Error("should reject text without any keyword")
	}
	if pred("") {
		t.Error("should reject empty text")
	}
}

func TestOverrideReplacesDefaults(t *testing.T) {
	pred := NewPredicate(true, true, []string{"surfing"})

	if !pred("learning surfing this summer") {
		t.Error("should match override keyword")
	}
	if pred("walking around tokyo") {
		t.Error("override should drop default keywords")
	}
}

func TestOverrideWithEmptyListFallsBack(t *testing.T) {
	pred := NewPredicate(true, true, nil)
	if !pred("ramen tour") {
		t.Error("empty override list should fall back to defaults")
	}
}
