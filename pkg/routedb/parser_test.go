package routedb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDB = `{
  "routeList": {
    "1A-1-CHUK YUEN ESTATE-STAR FERRY": {
      "route": "1A",
      "co": ["kmb"],
      "stops": {"kmb": ["S1", "S2", "S3"]},
      "dest": {"zh": "尖沙咀碼頭", "en": "STAR FERRY"},
      "orig": {"zh": "竹園邨", "en": "CHUK YUEN ESTATE"},
      "serviceType": "1"
    },
    "TML-1-TUEN MUN-WU KAI SHA": {
      "route": "TML",
      "co": ["mtr"],
      "stops": {"mtr": ["TUM", "WKS"]},
      "dest": {"zh": "烏溪沙", "en": "Wu Kai Sha"},
      "orig": {"zh": "屯門", "en": "Tuen Mun"},
      "serviceType": 2
    },
    "GHOST-1": {
      "route": "GHOST",
      "co": ["ctb"],
      "stops": {},
      "dest": {"zh": "", "en": ""},
      "orig": {"zh": "", "en": ""},
      "serviceType": "1"
    }
  },
  "stopList": {
    "S1": {"name": {"zh": "竹園邨", "en": "CHUK YUEN ESTATE"}, "location": {"lat": 22.34, "lng": 114.19}},
    "S2": {"name": {"zh": "旺角", "en": "MONG KOK"}, "location": {"lat": 22.31, "lng": 114.17}},
    "S3": {"name": {"zh": "尖沙咀碼頭", "en": "STAR FERRY"}, "location": {"lat": 22.29, "lng": 114.16}}
  }
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	result, err := NewParser(testLogger()).Parse([]byte(sampleDB))
	require.NoError(t, err)

	assert.Len(t, result.Stops, 3)
	assert.Len(t, result.Routes, 2, "routes without any stop sequence are dropped")

	bus := result.Routes["1A-1-CHUK YUEN ESTATE-STAR FERRY"]
	require.NotNil(t, bus)
	assert.Equal(t, "1A", bus.RouteNumber)
	assert.Equal(t, []string{"kmb"}, bus.Companies)
	assert.Equal(t, []string{"S1", "S2", "S3"}, bus.StopsByCompany["kmb"])
	assert.Equal(t, "STAR FERRY", bus.Destination.EN)
	assert.Equal(t, "1", bus.ServiceType)

	metro := result.Routes["TML-1-TUEN MUN-WU KAI SHA"]
	require.NotNil(t, metro)
	assert.Equal(t, "2", metro.ServiceType, "numeric service type is accepted")

	stop := result.Stops["S2"]
	require.NotNil(t, stop)
	assert.Equal(t, "旺角", stop.Name.ZH)
	assert.InDelta(t, 114.17, stop.Lon, 1e-9)
}

func TestParse_Invalid(t *testing.T) {
	p := NewParser(testLogger())

	_, err := p.Parse([]byte("not json"))
	assert.Error(t, err)

	_, err = p.Parse([]byte(`{"routeList": {}}`))
	assert.Error(t, err)
}

func TestDownloader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/routeFareList.min.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleDB))
	}))
	defer srv.Close()

	data, err := NewDownloader(srv.URL+"/routeFareList.min.json", testLogger()).Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleDB, string(data))

	_, err = NewDownloader(srv.URL+"/missing.json", testLogger()).Download(context.Background())
	assert.Error(t, err)
}
