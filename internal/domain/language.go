package domain

// Language is one of the two supported display languages.
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

// DefaultLanguage is used when no preference is supplied.
const DefaultLanguage = LangZH

func (l Language) Valid() bool {
	return l == LangZH || l == LangEN
}

// TimeFormat selects how the wait time of a line is rendered.
type TimeFormat string

const (
	TimeFormatExact TimeFormat = "exact"
	TimeFormatDiff  TimeFormat = "diff"
	TimeFormatMixed TimeFormat = "mixed"
)

// PlatformMode selects the rendering of an extracted platform number.
type PlatformMode string

const (
	PlatformText   PlatformMode = "text"
	PlatformSymbol PlatformMode = "symbol"
)

// DisplayOptions is the per-viewer configuration passed explicitly into the core.
type DisplayOptions struct {
	Language     Language     `json:"lang" validate:"oneof=zh en"`
	TimeFormat   TimeFormat   `json:"format" validate:"oneof=exact diff mixed"`
	PlatformMode PlatformMode `json:"platform" validate:"oneof=text symbol"`
	ShowStopName bool         `json:"stopName"`
}

func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		Language:     DefaultLanguage,
		TimeFormat:   TimeFormatDiff,
		PlatformMode: PlatformText,
	}
}
