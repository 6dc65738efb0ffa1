// Package i18n loads display strings from YAML catalogs embedded in the
// binary. Nested keys are addressed with dots, e.g. "search.no_profiles".
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLang is used when a language has no catalog.
const DefaultLang = "en"

//go:embed locales/*.yaml
var locales embed.FS

// Catalog maps language -> flattened key -> template.
type Catalog struct {
	langs map[string]map[string]string
}

// Load parses every locales/<lang>.yaml file shipped with the binary.
func Load() (*Catalog, error) {
	return LoadFS(locales, "locales")
}

// LoadFS parses <dir>/<lang>.yaml files from fsys.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	c := &Catalog{langs: make(map[string]map[string]string)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		c.langs[strings.TrimSuffix(name, ".yaml")] = flat
	}
	if _, ok := c.langs[DefaultLang]; !ok {
		return nil, fmt.Errorf("i18n: missing %s catalog", DefaultLang)
	}
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Lang narrows the catalog to one language with fallback to DefaultLang.
func (c *Catalog) Lang(lang string) Localizer {
	return Localizer{c: c, lang: normalizeLang(lang)}
}

// Has reports whether key exists in the default catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.langs[DefaultLang][key]
	return ok
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

// Localizer resolves keys for one language.
type Localizer struct {
	c    *Catalog
	lang string
}

// T returns the template for key formatted with args. Unknown keys come back
// as the key itself so a missing string is visible but harmless.
func (l Localizer) T(key string, args ...any) string {
	tmpl, ok := l.lookup(key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (l Localizer) lookup(key string) (string, bool) {
	if l.c == nil {
		return "", false
	}
	if m, ok := l.c.langs[l.lang]; ok {
		if s, ok := m[key]; ok {
			return s, true
		}
	}
	s, ok := l.c.langs[DefaultLang][key]
	return s, ok
}
