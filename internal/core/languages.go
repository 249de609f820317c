package core

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	languageassets "github.com/voxgate/voxgate/internal/assets/languages"
)

// DefaultLanguage is substituted when the engine detects a language outside
// the supported set.
const DefaultLanguage = "en"

type languageCatalog struct {
	Languages map[string]string `yaml:"languages"`
}

var (
	languagesOnce sync.Once
	languages     map[string]string
)

func loadLanguages() map[string]string {
	languagesOnce.Do(func() {
		var catalog languageCatalog
		if err := yaml.Unmarshal(languageassets.YAML, &catalog); err != nil {
			// The catalog is embedded at build time; a parse failure is a
			// packaging bug, not a runtime condition.
			panic(fmt.Sprintf("core: invalid embedded language catalog: %v", err))
		}
		languages = catalog.Languages
	})
	return languages
}

// SupportedLanguages returns the code -> display-name catalog.
// The returned map must not be mutated.
func SupportedLanguages() map[string]string {
	return loadLanguages()
}

// SupportedLanguageCodes returns the catalog codes in sorted order.
func SupportedLanguageCodes() []string {
	catalog := loadLanguages()
	codes := make([]string, 0, len(catalog))
	for code := range catalog {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupportedLanguage reports whether code is in the catalog.
func IsSupportedLanguage(code string) bool {
	_, ok := loadLanguages()[code]
	return ok
}

// LanguageName resolves the display name for a supported code, falling back
// to the default language's name for anything unknown.
func LanguageName(code string) string {
	catalog := loadLanguages()
	if name, ok := catalog[code]; ok {
		return name
	}
	return catalog[DefaultLanguage]
}
