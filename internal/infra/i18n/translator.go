package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds the fixed payloads (menu texts, notices, privacy policy) of one language.
type Translator struct {
	lang         string
	translations map[string]string
	policyText   string
}

// NewTranslator loads locales/<lang>.yaml and locales/policy-<lang>.txt from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	langCode = strings.ToLower(strings.TrimSpace(langCode))
	filePath := path.Join("locales", langCode+".yaml")

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = langCode

	policyPath := path.Join("locales", "policy-"+langCode+".txt")
	policyBytes, err := fs.ReadFile(fsys, policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", policyPath, err)
	}
	t.policyText = strings.TrimRight(string(policyBytes), "\n")
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T (Translate) returns the text for key, formatted with args. Unknown keys return the key.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Policy renders the privacy policy; args are the brand name and the admin contact.
func (t *Translator) Policy(args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(t.policyText, args...)
	}
	return t.policyText
}

func (t *Translator) Lang() string { return t.lang }
