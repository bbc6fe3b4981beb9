package eta

import (
	"math"
	"strconv"
	"time"

	"etaboard/internal/i18n"
)

// WaitCategory is the display class of a remaining wait.
type WaitCategory string

const (
	WaitArriving    WaitCategory = "arriving"
	WaitDeparting   WaitCategory = "departing"
	WaitMinutes     WaitCategory = "minutes"
	WaitUnavailable WaitCategory = "unavailable"
)

const unavailableText = "-"

// WaitTime is a classified wait. Minutes is only meaningful for WaitMinutes.
type WaitTime struct {
	Category WaitCategory `json:"category"`
	Minutes  int          `json:"minutes,omitempty"`
	Text     string       `json:"text"`
	Unit     string       `json:"unit,omitempty"`
}

// RoundedMinutes rounds the distance from now to eta to whole minutes, ties upward.
func RoundedMinutes(eta, now time.Time) int {
	ms := float64(eta.Sub(now).Milliseconds())
	return int(math.Floor(ms/60000 + 0.5))
}

// ClassifyWait classifies the wait until eta. hasETA=false yields WaitUnavailable.
func ClassifyWait(eta time.Time, hasETA bool, now time.Time, trainLike bool, p i18n.Phrases) WaitTime {
	if !hasETA {
		return WaitTime{Category: WaitUnavailable, Text: unavailableText}
	}

	n := RoundedMinutes(eta, now)
	switch {
	case trainLike && n == 1:
		return WaitTime{Category: WaitDeparting, Text: p.Departing}
	case trainLike && n <= 0:
		return WaitTime{Category: WaitArriving, Text: p.Arriving}
	case n < 1:
		return WaitTime{Category: WaitUnavailable, Text: unavailableText}
	default:
		return WaitTime{
			Category: WaitMinutes,
			Minutes:  n,
			Text:     strconv.Itoa(n),
			Unit:     p.Minutes,
		}
	}
}
