package domain

import (
	"strings"
	"time"
)

// Company codes with train-like arrival semantics. Every other code is road-based.
const (
	CompanyMTR       = "mtr"
	CompanyLightRail = "lightRail"
)

// IsTrainLike reports whether the company runs metro or light rail.
func IsTrainLike(co string) bool {
	return co == CompanyMTR || co == CompanyLightRail
}

// TerminalName is the name of a destination in every supported language.
type TerminalName struct {
	ZH string `json:"zh"`
	EN string `json:"en"`
}

func (t TerminalName) In(lang Language) string {
	if lang == LangEN {
		return t.EN
	}
	return t.ZH
}

// ArrivalRecord is a single upstream ETA entry for a route/stop key.
type ArrivalRecord struct {
	ETA         string               `json:"eta"`
	Remark      map[Language]*string `json:"remark"`
	CompanyCode string               `json:"co"`
	Destination TerminalName         `json:"dest"`
}

// ETATime parses the record's timestamp. A blank or malformed value is not usable.
func (r ArrivalRecord) ETATime() (time.Time, bool) {
	s := strings.TrimSpace(r.ETA)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (r ArrivalRecord) HasETA() bool {
	_, ok := r.ETATime()
	return ok
}

// RemarkIn returns the operator remark for lang, nil when the source gave none.
func (r ArrivalRecord) RemarkIn(lang Language) *string {
	if r.Remark == nil {
		return nil
	}
	return r.Remark[lang]
}

// ArrivalBatch is the latest delivery for one route/stop key.
type ArrivalBatch struct {
	Key       string          `json:"key"`
	Records   []ArrivalRecord `json:"records"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
