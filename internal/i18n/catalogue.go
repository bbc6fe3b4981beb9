// Package i18n holds the phrase tables used to render ETA reports.
//
// The default tables are embedded from phrases.yml. An override file with the
// same layout can replace individual entries at startup.
package i18n

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"etaboard/internal/domain"
)

//go:embed phrases.yml
var defaultPhrases []byte

// Phrases are the fixed texts of one language.
type Phrases struct {
	EndOfLine   string `yaml:"endOfLine" validate:"required"`
	NoSchedule  string `yaml:"noSchedule" validate:"required"`
	Minutes     string `yaml:"minutes" validate:"required"`
	Arriving    string `yaml:"arriving" validate:"required"`
	Departing   string `yaml:"departing" validate:"required"`
	DualDeck    string `yaml:"dualDeck" validate:"required"`
	SingleDeck  string `yaml:"singleDeck" validate:"required"`
	SpecialTrip string `yaml:"specialTrip" validate:"required"`
}

// Table is everything translatable for one language.
type Table struct {
	Phrases   Phrases           `yaml:"phrases"`
	Companies map[string]string `yaml:"companies"`
	Routes    map[string]string `yaml:"routes"`
}

type Catalogue struct {
	tables map[domain.Language]Table
}

// Default returns the embedded catalogue. It panics if the embedded file is broken.
func Default() *Catalogue {
	c, err := Parse(defaultPhrases)
	if err != nil {
		panic(fmt.Sprintf("embedded phrases: %v", err))
	}
	return c
}

// Parse decodes and validates a catalogue. Both supported languages are required.
func Parse(data []byte) (*Catalogue, error) {
	var raw map[domain.Language]Table
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode phrases: %w", err)
	}

	v := validator.New()
	tables := make(map[domain.Language]Table, 2)
	for _, lang := range []domain.Language{domain.LangZH, domain.LangEN} {
		t, ok := raw[lang]
		if !ok {
			return nil, fmt.Errorf("phrases: missing language %q", lang)
		}
		if err := v.Struct(t.Phrases); err != nil {
			return nil, fmt.Errorf("phrases %s: %w", lang, err)
		}
		tables[lang] = t
	}
	return &Catalogue{tables: tables}, nil
}

// LoadWithOverrides reads path and lays its non-empty entries over the defaults.
func LoadWithOverrides(path string) (*Catalogue, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrases: %w", err)
	}
	var raw map[domain.Language]Table
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode phrases: %w", err)
	}

	for lang, over := range raw {
		t, ok := base.tables[lang]
		if !ok {
			return nil, fmt.Errorf("phrases: unsupported language %q", lang)
		}
		base.tables[lang] = merge(t, over)
	}
	return base, nil
}

func merge(base, over Table) Table {
	p := &base.Phrases
	o := over.Phrases
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&p.EndOfLine, o.EndOfLine},
		{&p.NoSchedule, o.NoSchedule},
		{&p.Minutes, o.Minutes},
		{&p.Arriving, o.Arriving},
		{&p.Departing, o.Departing},
		{&p.DualDeck, o.DualDeck},
		{&p.SingleDeck, o.SingleDeck},
		{&p.SpecialTrip, o.SpecialTrip},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}

	base.Companies = mergeMap(base.Companies, over.Companies)
	base.Routes = mergeMap(base.Routes, over.Routes)
	return base
}

func mergeMap(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Phrases returns the fixed texts for lang, falling back to the default language.
func (c *Catalogue) Phrases(lang domain.Language) Phrases {
	if t, ok := c.tables[lang]; ok {
		return t.Phrases
	}
	return c.tables[domain.DefaultLanguage].Phrases
}

// Company returns the display name of an operator code, or the code itself.
func (c *Catalogue) Company(lang domain.Language, co string) string {
	if name := c.tables[lang].Companies[co]; name != "" {
		return name
	}
	return co
}

// RouteName translates a route number (metro line codes); unknown numbers pass through.
func (c *Catalogue) RouteName(lang domain.Language, routeNo string) string {
	if name := c.tables[lang].Routes[routeNo]; name != "" {
		return name
	}
	return routeNo
}
