package eta

import (
	"time"

	"etaboard/internal/domain"
	"etaboard/internal/i18n"
)

// EtaLine is one renderable arrival. Every text field is ready for display.
type EtaLine struct {
	Company      string            `json:"co"`
	CompanyLabel string            `json:"companyLabel,omitempty"`
	ShowCompany  bool              `json:"showCompany"`
	TrainLike    bool              `json:"trainLike"`
	TimeFormat   domain.TimeFormat `json:"format"`
	Wait         WaitTime          `json:"wait"`
	ExactTime    string            `json:"exactTime,omitempty"`
	Remark       string            `json:"remark"`
	Branch       bool              `json:"branch"`
	Destination  string            `json:"destination,omitempty"`
}

// LineContext is what every line of one stop shares.
type LineContext struct {
	Now          time.Time
	Destinations []domain.TerminalName
	MultiCompany bool
	Options      domain.DisplayOptions
	Catalogue    *i18n.Catalogue
}

// ComposeLine builds the display line for a single record.
func ComposeLine(rec domain.ArrivalRecord, lc LineContext) EtaLine {
	lang := lc.Options.Language
	phrases := lc.Catalogue.Phrases(lang)
	trainLike := domain.IsTrainLike(rec.CompanyCode)
	etaTime, hasETA := rec.ETATime()

	line := EtaLine{
		Company:     rec.CompanyCode,
		ShowCompany: lc.MultiCompany,
		TrainLike:   trainLike,
		TimeFormat:  lc.Options.TimeFormat,
		Wait:        ClassifyWait(etaTime, hasETA, lc.Now, trainLike, phrases),
		Remark:      NormalizeRemark(rec.RemarkIn(lang), lang, lc.Options.PlatformMode, phrases),
		Branch:      IsBranch(rec.Destination, rec.CompanyCode, lc.Destinations),
	}
	if lc.MultiCompany {
		line.CompanyLabel = lc.Catalogue.Company(lang, rec.CompanyCode)
	}
	if hasETA && lc.Options.TimeFormat != domain.TimeFormatDiff {
		line.ExactTime = etaTime.Format("15:04")
	}
	if line.Branch {
		line.Destination = rec.Destination.In(lang)
	}
	return line
}

// ReportState tells the renderer which of the three shapes a report has.
type ReportState string

const (
	ReportLoading    ReportState = "loading"
	ReportNoSchedule ReportState = "noSchedule"
	ReportLines      ReportState = "lines"
)

type TimeReport struct {
	Key        string      `json:"key"`
	State      ReportState `json:"state"`
	StopName   string      `json:"stopName,omitempty"`
	NoSchedule *NoSchedule `json:"noSchedule,omitempty"`
	Lines      []EtaLine   `json:"lines,omitempty"`
}

// ReportInput is one stop of one route. A nil Batch means the ETAs are pending
// and the report carries nothing but its key, stop name included.
type ReportInput struct {
	Route     *domain.RouteContext
	Seq       int
	Batch     *domain.ArrivalBatch
	Stops     StopIndex
	Now       time.Time
	Options   domain.DisplayOptions
	Catalogue *i18n.Catalogue
}

// BuildTimeReport decides between loading, a no-schedule explanation and lines.
// Lines are produced only when every record of the batch has a usable ETA.
func BuildTimeReport(in ReportInput) TimeReport {
	stopID, _ := in.Route.StopAt(in.Seq)
	report := TimeReport{
		Key:   domain.RouteStopKey(in.Route.ID, in.Seq),
		State: ReportLoading,
	}
	if in.Batch == nil {
		return report
	}
	if in.Options.ShowStopName {
		if stop, ok := in.Stops.Stop(stopID); ok {
			report.StopName = stop.Name.In(in.Options.Language)
		}
	}

	records := in.Batch.Records
	if !allUsable(records) {
		phrases := in.Catalogue.Phrases(in.Options.Language)
		verdict := ResolveNoSchedule(records, IsTerminalStop(in.Route, stopID), in.Options.Language, phrases)
		if verdict.Kind == NoScheduleNone {
			// Some records usable, some not: the batch is still withheld as a whole.
			verdict = NoSchedule{Kind: NoScheduleNoData, Text: phrases.NoSchedule}
		}
		report.State = ReportNoSchedule
		report.NoSchedule = &verdict
		return report
	}

	lc := LineContext{
		Now:          in.Now,
		Destinations: RouteDestinations(in.Route, in.Stops),
		MultiCompany: len(in.Route.Companies) > 1,
		Options:      in.Options,
		Catalogue:    in.Catalogue,
	}
	report.State = ReportLines
	report.Lines = make([]EtaLine, 0, len(records))
	for _, rec := range records {
		report.Lines = append(report.Lines, ComposeLine(rec, lc))
	}
	return report
}
