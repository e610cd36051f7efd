package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"f1lapcompare/pkg/model"
)

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (m *memCache) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[key]
	return b, ok, nil
}

func (m *memCache) Put(key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = body
	return nil
}

const sessionJSON = `{
	"drivers": [
		{"number": "1", "abbreviation": "VER", "teamName": "Red Bull Racing"},
		{"number": "44", "abbreviation": "HAM", "teamName": "Ferrari"}
	],
	"laps": [
		{"driver": "VER", "lapNumber": 2, "lapTime": 65.432, "compound": "SOFT"},
		{"driver": "VER", "lapNumber": 1, "lapTime": null, "compound": "SOFT"},
		{"driver": "HAM", "lapNumber": 1, "lapTime": 66.1, "compound": "MEDIUM"}
	],
	"results": [
		{"abbreviation": "VER", "position": 1},
		{"abbreviation": "HAM", "position": null}
	],
	"weather": [
		{"trackTemp": 40.5, "airTemp": 25.1, "rainfall": false, "windSpeed": 1.2},
		{"trackTemp": 41.5, "airTemp": null, "rainfall": true, "windSpeed": null}
	],
	"circuit": {"corners": [{"number": 1, "distance": 500, "x": 1, "y": 2}, {"number": 2, "x": 3, "y": 4}]}
}`

const telemetryJSON = `{"samples": [
	{"distance": 0, "time": 0, "speed": 100, "throttle": 100, "brake": 0, "nGear": 7, "rpm": 11000, "drs": 0, "x": 0, "y": 0},
	{"distance": 10, "time": 0.5, "speed": null, "throttle": 90, "brake": 0, "nGear": 7, "rpm": 11100, "drs": 12, "x": 1, "y": 1}
]}`

func newTestServer(t *testing.T, hits *int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sessions/2025/China/R", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Write([]byte(sessionJSON))
	})
	mux.HandleFunc("/v1/sessions/2025/China/R/laps/VER/2/telemetry", func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Write([]byte(telemetryJSON))
	})
	mux.HandleFunc("/v1/sessions/2025/China/R/laps/VER/3/telemetry", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"samples": [{"distance": 10}, {"distance": 5}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var key = model.SessionKey{Year: 2025, Event: "China", Session: "R"}

func TestLoadSession(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, newMemCache())

	s, err := c.LoadSession(context.Background(), key)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(s.Drivers) != 2 || s.Drivers[0].Abbreviation != "VER" {
		t.Errorf("Unexpected drivers: %+v", s.Drivers)
	}
	ver := s.PickDriver("VER")
	if len(ver) != 2 || ver[0].Number != 1 || ver[1].Number != 2 {
		t.Fatalf("Expected VER laps sorted by number, got %+v", ver)
	}
	if ver[0].HasTime {
		t.Error("Expected lap 1 to have no time")
	}
	if !ver[1].HasTime || ver[1].Time != 65432*time.Millisecond {
		t.Errorf("Expected lap 2 time 65.432s, got %s", ver[1].Time)
	}
	if s.Results["VER"] != 1 {
		t.Errorf("Expected VER P1, got %d", s.Results["VER"])
	}
	if _, ok := s.Results["HAM"]; ok {
		t.Error("Expected HAM to be unclassified")
	}
	if len(s.Circuit.Corners) != 2 || !s.Circuit.Corners[0].HasDistance || s.Circuit.Corners[1].HasDistance {
		t.Errorf("Unexpected corners: %+v", s.Circuit.Corners)
	}
	if len(s.Weather) != 2 || s.Weather[1].AirTemp != nil {
		t.Errorf("Unexpected weather: %+v", s.Weather)
	}

	if _, err := c.LoadSession(context.Background(), key); err != nil {
		t.Fatalf("second LoadSession failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected cached response on second load, provider hit %d times", hits)
	}
}

func TestLapTelemetry(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, nil)

	tr, err := c.LapTelemetry(context.Background(), key, "VER", 2)
	if err != nil {
		t.Fatalf("LapTelemetry failed: %v", err)
	}
	if tr.Len() != 2 {
		t.Fatalf("Expected 2 samples, got %d", tr.Len())
	}
	if !tr.HasDRS {
		t.Error("Expected DRS column to be detected")
	}
	if tr.Samples[1].Speed != 0 {
		t.Errorf("Expected missing speed to be zero, got %f", tr.Samples[1].Speed)
	}
	if tr.Samples[1].Time != 500*time.Millisecond {
		t.Errorf("Expected 0.5s, got %s", tr.Samples[1].Time)
	}
}

func TestLapTelemetryRejectsDecreasingDistance(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	cache := newMemCache()
	c := NewClient(srv.URL, cache)

	if _, err := c.LapTelemetry(context.Background(), key, "VER", 3); err == nil {
		t.Fatal("Expected error for decreasing distances")
	}
	if len(cache.items) != 0 {
		t.Error("Expected invalid response not to be cached")
	}
}

func TestProviderErrors(t *testing.T) {
	hits := 0
	srv := newTestServer(t, &hits)
	c := NewClient(srv.URL, nil)

	_, err := c.LoadSession(context.Background(), model.SessionKey{Year: 1900, Event: "Nowhere", Session: "R"})
	if err == nil {
		t.Fatal("Expected error for unknown session")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.LoadSession(ctx, key); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
