package eta

import (
	"time"

	"etaboard/internal/domain"
	"etaboard/internal/i18n"
)

var (
	testNow       = time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("HKT", 8*3600))
	testCatalogue = i18n.Default()
)

type stopMap map[string]*domain.Stop

func (m stopMap) Stop(id string) (*domain.Stop, bool) {
	s, ok := m[id]
	return s, ok
}

func strPtr(s string) *string { return &s }

func etaIn(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339)
}

func record(co, eta string, dest domain.TerminalName) domain.ArrivalRecord {
	return domain.ArrivalRecord{
		ETA:         eta,
		CompanyCode: co,
		Destination: dest,
		Remark:      map[domain.Language]*string{},
	}
}

var (
	tsimShaTsui = domain.TerminalName{ZH: "尖沙咀碼頭", EN: "Star Ferry"}
	chukYuen    = domain.TerminalName{ZH: "竹園邨", EN: "Chuk Yuen Estate"}
	mongKok     = domain.TerminalName{ZH: "旺角", EN: "Mong Kok"}
)

func testStops() stopMap {
	return stopMap{
		"S1": {ID: "S1", Name: chukYuen},
		"S2": {ID: "S2", Name: mongKok},
		"S3": {ID: "S3", Name: tsimShaTsui},
		"L1": {ID: "L1", Name: domain.TerminalName{ZH: "屯門碼頭", EN: "Tuen Mun Ferry Pier"}},
		"L2": {ID: "L2", Name: domain.TerminalName{ZH: "兆康", EN: "Siu Hong"}},
	}
}

func busRoute() *domain.RouteContext {
	return &domain.RouteContext{
		ID:             "1-1-CHUK YUEN ESTATE-STAR FERRY",
		RouteNumber:    "1",
		Companies:      []string{"kmb"},
		StopsByCompany: map[string][]string{"kmb": {"S1", "S2", "S3"}},
		Destination:    tsimShaTsui,
	}
}

func jointRoute() *domain.RouteContext {
	return &domain.RouteContext{
		ID:          "101-1-KENNEDY TOWN-KWUN TONG",
		RouteNumber: "101",
		Companies:   []string{"kmb", "ctb"},
		StopsByCompany: map[string][]string{
			"kmb": {"S1", "S2", "S3"},
			"ctb": {"S1", "S2", "S3"},
		},
		Destination: tsimShaTsui,
	}
}

func lightRailRoute() *domain.RouteContext {
	return &domain.RouteContext{
		ID:             "505-1-SAM SHING-SIU HONG",
		RouteNumber:    "505",
		Companies:      []string{domain.CompanyLightRail},
		StopsByCompany: map[string][]string{domain.CompanyLightRail: {"L1", "L2"}},
		Destination:    domain.TerminalName{ZH: "兆康", EN: "Siu Hong"},
	}
}

func metroRoute() *domain.RouteContext {
	return &domain.RouteContext{
		ID:             "TML-1-WU KAI SHA-TUEN MUN",
		RouteNumber:    "TML",
		Companies:      []string{domain.CompanyMTR},
		StopsByCompany: map[string][]string{domain.CompanyMTR: {"S1", "S2", "S3"}},
		Destination:    tsimShaTsui,
	}
}
