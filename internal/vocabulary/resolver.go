package vocabulary

import (
	"sort"
	"strings"

	"pointeuse/internal/models"
)

// Template returns the template of an industry, GENERIC for unknown or empty industries.
func Template(industry string) IndustryTemplate {
	if t, ok := templates[strings.ToUpper(strings.TrimSpace(industry))]; ok {
		return t
	}
	return templates[IndustryGeneric]
}

// Industries lists every known industry key.
func Industries() []string {
	out := make([]string, 0, len(templates))
	for k := range templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Keys lists every vocabulary key GENERIC defines.
func Keys() []string {
	out := make([]string, 0, len(generic.Vocabulary))
	for k := range generic.Vocabulary {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Text resolves a wording: tenant override, then industry template, then GENERIC.
// An unknown key resolves to itself.
func Text(t *models.Tenant, key string) string {
	if t != nil {
		if v := strings.TrimSpace(t.Vocabulary[key]); v != "" {
			return t.Vocabulary[key]
		}
		if v := Template(t.Industry).Vocabulary[key]; v != "" {
			return v
		}
	}
	if v := generic.Vocabulary[key]; v != "" {
		return v
	}
	return key
}

// Feature resolves a feature toggle with the same precedence as Text. Unknown features
// are disabled.
func Feature(t *models.Tenant, key string) bool {
	if t != nil {
		if v, ok := t.Config[key]; ok {
			return v
		}
		if v, ok := Template(t.Industry).Config[key]; ok {
			return v
		}
	}
	return generic.Config[key]
}

// MergedVocabulary lays the tenant overrides over its industry template, key by key.
func MergedVocabulary(t *models.Tenant) models.Vocabulary {
	tmpl := Template(industryOf(t))
	out := make(models.Vocabulary, len(tmpl.Vocabulary))
	for k, v := range tmpl.Vocabulary {
		out[k] = v
	}
	if t != nil {
		for k, v := range t.Vocabulary {
			if strings.TrimSpace(v) != "" {
				out[k] = v
			}
		}
	}
	return out
}

// MergedConfig lays the tenant toggles over its industry template, key by key.
func MergedConfig(t *models.Tenant) models.FeatureConfig {
	tmpl := Template(industryOf(t))
	out := make(models.FeatureConfig, len(tmpl.Config))
	for k, v := range tmpl.Config {
		out[k] = v
	}
	if t != nil {
		for k, v := range t.Config {
			out[k] = v
		}
	}
	return out
}

func industryOf(t *models.Tenant) string {
	if t == nil {
		return IndustryGeneric
	}
	return t.Industry
}
