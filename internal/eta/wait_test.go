package eta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"etaboard/internal/domain"
)

func TestRoundedMinutes(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{name: "just under half a minute", d: 29*time.Second + 999*time.Millisecond, want: 0},
		{name: "half a minute rounds up", d: 30 * time.Second, want: 1},
		{name: "ninety seconds", d: 90 * time.Second, want: 2},
		{name: "negative half rounds toward zero", d: -30 * time.Second, want: 0},
		{name: "past half a minute ago", d: -31 * time.Second, want: -1},
		{name: "exact minutes", d: 7 * time.Minute, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundedMinutes(testNow.Add(tt.d), testNow))
		})
	}
}

func TestClassifyWait(t *testing.T) {
	zh := testCatalogue.Phrases(domain.LangZH)

	tests := []struct {
		name      string
		d         time.Duration
		hasETA    bool
		trainLike bool
		want      WaitTime
	}{
		{name: "train one minute departs", d: time.Minute, hasETA: true, trainLike: true,
			want: WaitTime{Category: WaitDeparting, Text: zh.Departing}},
		{name: "train now arrives", d: 0, hasETA: true, trainLike: true,
			want: WaitTime{Category: WaitArriving, Text: zh.Arriving}},
		{name: "train overdue arrives", d: -3 * time.Minute, hasETA: true, trainLike: true,
			want: WaitTime{Category: WaitArriving, Text: zh.Arriving}},
		{name: "train later counts minutes", d: 5 * time.Minute, hasETA: true, trainLike: true,
			want: WaitTime{Category: WaitMinutes, Minutes: 5, Text: "5", Unit: zh.Minutes}},
		{name: "bus one minute", d: time.Minute, hasETA: true,
			want: WaitTime{Category: WaitMinutes, Minutes: 1, Text: "1", Unit: zh.Minutes}},
		{name: "bus now is unavailable", d: 0, hasETA: true,
			want: WaitTime{Category: WaitUnavailable, Text: "-"}},
		{name: "bus overdue is unavailable", d: -4 * time.Minute, hasETA: true,
			want: WaitTime{Category: WaitUnavailable, Text: "-"}},
		{name: "missing eta", d: 10 * time.Minute, hasETA: false, trainLike: true,
			want: WaitTime{Category: WaitUnavailable, Text: "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyWait(testNow.Add(tt.d), tt.hasETA, testNow, tt.trainLike, zh)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyWaitNeverShowsNonPositiveMinutes(t *testing.T) {
	en := testCatalogue.Phrases(domain.LangEN)

	for s := -900; s <= 900; s += 7 {
		eta := testNow.Add(time.Duration(s) * time.Second)
		n := RoundedMinutes(eta, testNow)

		train := ClassifyWait(eta, true, testNow, true, en)
		switch {
		case n == 1:
			assert.Equal(t, WaitDeparting, train.Category, "train at %ds", s)
		case n <= 0:
			assert.Equal(t, WaitArriving, train.Category, "train at %ds", s)
		default:
			assert.Equal(t, WaitMinutes, train.Category, "train at %ds", s)
		}

		bus := ClassifyWait(eta, true, testNow, false, en)
		if n < 1 {
			assert.Equal(t, WaitUnavailable, bus.Category, "bus at %ds", s)
			assert.Empty(t, bus.Unit)
		} else {
			assert.Equal(t, n, bus.Minutes)
		}
	}
}
