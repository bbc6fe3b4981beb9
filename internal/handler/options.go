package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"etaboard/internal/domain"
)

// supportedTags is ordered like supportedLanguages; the first entry is the
// matcher's fallback.
var (
	supportedTags      = []language.Tag{language.MustParse("zh-Hant-HK"), language.English}
	supportedLanguages = []domain.Language{domain.LangZH, domain.LangEN}
	languageMatcher    = language.NewMatcher(supportedTags)
)

// OptionParser reads display options from requests and validates them.
type OptionParser struct {
	defaults domain.DisplayOptions
	validate *validator.Validate
}

func NewOptionParser(defaults domain.DisplayOptions) *OptionParser {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &OptionParser{defaults: defaults, validate: v}
}

func (p *OptionParser) Defaults() domain.DisplayOptions {
	return p.defaults
}

// Parse builds options from the lang, format, platform and stopName query
// parameters. Without lang, the Accept-Language header decides.
func (p *OptionParser) Parse(r *http.Request) (domain.DisplayOptions, error) {
	q := r.URL.Query()
	opts := p.defaults

	if lang := q.Get("lang"); lang != "" {
		opts.Language = domain.Language(lang)
	} else if header := r.Header.Get("Accept-Language"); header != "" {
		opts.Language = p.negotiate(header)
	}
	if format := q.Get("format"); format != "" {
		opts.TimeFormat = domain.TimeFormat(format)
	}
	if platform := q.Get("platform"); platform != "" {
		opts.PlatformMode = domain.PlatformMode(platform)
	}
	if v := q.Get("stopName"); v != "" {
		show, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid stopName parameter: %q", v)
		}
		opts.ShowStopName = show
	}

	if err := p.Validate(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validate rejects option values outside the supported sets.
func (p *OptionParser) Validate(opts domain.DisplayOptions) error {
	if err := p.validate.Struct(opts); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %q", fe.Field(), fmt.Sprint(fe.Value()))
		}
		return err
	}
	return nil
}

func (p *OptionParser) negotiate(header string) domain.Language {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return p.defaults.Language
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return p.defaults.Language
	}
	return supportedLanguages[idx]
}
