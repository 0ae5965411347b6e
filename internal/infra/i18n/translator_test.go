//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: Halo\nwelcome_user: Halo %s")

	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "Halo"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "Sidhanie")
		want := "Halo Sidhanie"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestNewTranslator_FromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/xx.yaml":       {Data: []byte("hi: hello %s\n")},
		"locales/policy-xx.txt": {Data: []byte("policy of %[1]s by %[2]s\n")},
	}
	tr, err := NewTranslator(fsys, "XX")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if got := tr.T("hi", "you"); got != "hello you" {
		t.Errorf("unexpected translation %q", got)
	}
	if got := tr.Policy("Brand", "@admin"); got != "policy of Brand by @admin" {
		t.Errorf("unexpected policy %q", got)
	}
	if tr.Lang() != "xx" {
		t.Errorf("unexpected lang %q", tr.Lang())
	}

	if _, err := NewTranslator(fsys, "zz"); err == nil {
		t.Error("expected an error for a missing language")
	}
}

// Every bundled language must define the same keys so no menu falls back to raw keys.
func TestBundledLocalesAreComplete(t *testing.T) {
	id, err := NewTranslator(LocalesFS, "id")
	if err != nil {
		t.Fatalf("load id: %v", err)
	}
	en, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("load en: %v", err)
	}
	for key := range id.translations {
		if _, ok := en.translations[key]; !ok {
			t.Errorf("en is missing %q", key)
		}
	}
	for key := range en.translations {
		if _, ok := id.translations[key]; !ok {
			t.Errorf("id is missing %q", key)
		}
	}
	if !strings.Contains(id.Policy("Sidhanie", "@sidhanie06"), "@sidhanie06") {
		t.Error("expected the admin contact in the policy text")
	}
}
