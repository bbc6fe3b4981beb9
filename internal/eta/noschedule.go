package eta

import (
	"etaboard/internal/domain"
	"etaboard/internal/i18n"
)

// NoScheduleKind explains why a stop shows no ETA lines.
type NoScheduleKind string

const (
	NoScheduleNone           NoScheduleKind = ""
	NoScheduleEndOfLine      NoScheduleKind = "endOfLine"
	NoScheduleOperatorRemark NoScheduleKind = "operatorRemark"
	NoScheduleNoData         NoScheduleKind = "noData"
)

type NoSchedule struct {
	Kind NoScheduleKind `json:"kind,omitempty"`
	Text string         `json:"text,omitempty"`
}

// IsTerminalStop reports whether stopID ends the route's train-like sequence.
// Metro is checked when it is the primary company, light rail whenever present.
func IsTerminalStop(route *domain.RouteContext, stopID string) bool {
	var seq []string
	switch {
	case len(route.Companies) > 0 && route.Companies[0] == domain.CompanyMTR:
		seq = route.StopsByCompany[domain.CompanyMTR]
	case route.HasCompany(domain.CompanyLightRail):
		seq = route.StopsByCompany[domain.CompanyLightRail]
	default:
		return false
	}

	pos := -1
	for i, id := range seq {
		if id == stopID {
			pos = i
			break
		}
	}
	return pos+1 >= len(seq)
}

// ResolveNoSchedule decides the explanation for a known batch. The caller shows
// a loading state instead while the batch is still pending.
func ResolveNoSchedule(records []domain.ArrivalRecord, terminal bool, lang domain.Language, phrases i18n.Phrases) NoSchedule {
	if terminal && len(records) == 0 {
		return NoSchedule{Kind: NoScheduleEndOfLine, Text: phrases.EndOfLine}
	}

	noneUsable := !anyUsable(records)
	if len(records) > 0 && noneUsable {
		if r := records[0].RemarkIn(lang); r != nil && *r != "" {
			return NoSchedule{Kind: NoScheduleOperatorRemark, Text: *r}
		}
	}

	if len(records) == 0 || noneUsable {
		return NoSchedule{Kind: NoScheduleNoData, Text: phrases.NoSchedule}
	}
	return NoSchedule{}
}

func anyUsable(records []domain.ArrivalRecord) bool {
	for _, r := range records {
		if r.HasETA() {
			return true
		}
	}
	return false
}

func allUsable(records []domain.ArrivalRecord) bool {
	for _, r := range records {
		if !r.HasETA() {
			return false
		}
	}
	return len(records) > 0
}
