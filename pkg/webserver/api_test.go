package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/session"

	"github.com/gorilla/websocket"
)

type fakeProvider struct{}

func (fakeProvider) LoadSession(ctx context.Context, key model.SessionKey) (*model.Session, error) {
	return &model.Session{
		Key:     key,
		Drivers: []model.Driver{{Abbreviation: "VER", TeamName: "Red Bull Racing"}, {Abbreviation: "NOR", TeamName: "McLaren"}},
		Laps: []model.Lap{
			{Driver: "VER", Number: 1, Time: 90 * time.Second, HasTime: true, Compound: "SOFT"},
			{Driver: "NOR", Number: 1, Time: 91 * time.Second, HasTime: true, Compound: "MEDIUM"},
		},
		Results: map[string]int{"VER": 1, "NOR": 2},
	}, nil
}

func (fakeProvider) LapTelemetry(ctx context.Context, key model.SessionKey, driver string, lap int) (model.Trace, error) {
	speed := 50.0
	if driver == "NOR" {
		speed = 48
	}
	t := model.Trace{}
	for i := 0; i <= 20; i++ {
		d := float64(i * 50)
		t.Samples = append(t.Samples, model.Sample{
			Distance: d,
			Time:     time.Duration(d / speed * float64(time.Second)),
			Speed:    speed * 3.6,
			X:        d,
			Y:        float64(i % 5),
		})
	}
	return t, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	store := session.NewStore(fakeProvider{}, nil, time.Second)
	store.SetPublisher(nil)
	m := NewManager(":0", t.TempDir(), store, compare.NewEngine(store))
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, body interface{}) (int, reply) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	var rep reply
	json.NewDecoder(resp.Body).Decode(&rep)
	return resp.StatusCode, rep
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

var china = model.SessionKey{Year: 2025, Event: "China", Session: "R"}

var goodRequest = compare.Request{Driver1: "VER", Lap1: "Lap 1", Driver2: "NOR", Lap2: "Lap 1", Channel: "Speed"}

func TestLoadSession(t *testing.T) {
	srv := newTestServer(t)

	status, rep := post(t, srv, "/api/session", china)
	if status != http.StatusOK || !rep.OK {
		t.Fatalf("Expected ok, got %d %+v", status, rep)
	}
	status, rep = post(t, srv, "/api/session", model.SessionKey{Year: 2025, Event: "China", Session: "FP9"})
	if status != http.StatusBadRequest || rep.OK {
		t.Errorf("Expected bad request for unknown session type, got %d %+v", status, rep)
	}
}

func TestLaps(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session", china)

	resp, body := get(t, srv, "/api/drivers/VER/laps?slot=2")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Lap 1 - 90.000s") {
		t.Errorf("Unexpected laps answer %d %s", resp.StatusCode, body)
	}
	resp, _ = get(t, srv, "/api/drivers/VER/laps?slot=3")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected bad request for slot 3, got %d", resp.StatusCode)
	}
	resp, _ = get(t, srv, "/api/drivers/HAM/laps")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected not found for driver without laps, got %d", resp.StatusCode)
	}
}

func TestDrivers(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := get(t, srv, "/api/drivers")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected not found before a session is loaded, got %d", resp.StatusCode)
	}

	post(t, srv, "/api/session", china)
	get(t, srv, "/api/drivers/NOR/laps?slot=2")

	resp, body := get(t, srv, "/api/drivers")
	var rep struct {
		OK      bool
		Message string
		Data    driversReply
	}
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("Invalid drivers answer %s: %v", body, err)
	}
	if resp.StatusCode != http.StatusOK || rep.Message != "2025 China R" || rep.Data.Session != china {
		t.Errorf("Unexpected drivers answer %d %s", resp.StatusCode, body)
	}
	if strings.Join(rep.Data.Drivers, ",") != "VER,NOR" {
		t.Errorf("Expected VER,NOR, got %v", rep.Data.Drivers)
	}
	if rep.Data.Slots != [2]string{"", "NOR"} {
		t.Errorf("Expected NOR in slot 2 only, got %v", rep.Data.Slots)
	}
}

func TestCompareFailuresAreReported(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session", china)

	req := goodRequest
	req.Channel = "Downforce"
	status, rep := post(t, srv, "/api/compare", req)
	if status != http.StatusBadRequest || rep.OK || !strings.Contains(rep.Message, "Downforce") {
		t.Errorf("Expected invalid channel failure, got %d %+v", status, rep)
	}

	req.Channel = "DRS"
	status, rep = post(t, srv, "/api/compare", req)
	if status != http.StatusUnprocessableEntity || rep.OK {
		t.Errorf("Expected channel unavailable failure, got %d %+v", status, rep)
	}

	resp, _ := get(t, srv, "/api/chart.png")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected no chart before a comparison, got %d", resp.StatusCode)
	}
}

func TestCompareAndRender(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session", china)

	status, rep := post(t, srv, "/api/compare", goodRequest)
	if status != http.StatusOK || !rep.OK {
		t.Fatalf("Expected comparison, got %d %+v", status, rep)
	}

	resp, body := get(t, srv, "/api/chart.png")
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Errorf("Expected PNG chart, got %d", resp.StatusCode)
	}
	resp, body = get(t, srv, "/api/minimap.svg?distance=120")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<svg") {
		t.Errorf("Expected SVG minimap, got %d", resp.StatusCode)
	}

	status, rep = post(t, srv, "/api/chart/zoom/in", nil)
	if status != http.StatusOK || !rep.OK {
		t.Errorf("Expected zoom, got %d %+v", status, rep)
	}
	if rep.Message != "View centered at 500 m, 176.4" {
		t.Errorf("Unexpected zoom message %q", rep.Message)
	}
	view := rep.Data.(map[string]interface{})
	if view["xMin"].(float64) != 250 || view["xMax"].(float64) != 750 {
		t.Errorf("Unexpected zoomed view %v", view)
	}

	status, rep = post(t, srv, "/api/export?format=svg", nil)
	if status != http.StatusOK || !strings.HasSuffix(rep.Message, "VER_L1_vs_NOR_L1_Velocidade.svg") {
		t.Errorf("Expected export, got %d %+v", status, rep)
	}
}

func TestHoverWebsocket(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/api/session", china)
	post(t, srv, "/api/compare", goodRequest)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/hover"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.WriteMessage(websocket.TextMessage, []byte(`{"distance": 130}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var rep hoverReply
	if err := c.ReadJSON(&rep); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !rep.OK || rep.Point == nil || rep.Point.Distance != 150 || rep.Point.Values[0] != 180 {
		t.Errorf("Unexpected hover reply %+v", rep)
	}

	c.WriteMessage(websocket.TextMessage, []byte(`garbage`))
	if err := c.ReadJSON(&rep); err != nil {
		t.Fatalf("read: %v", err)
	}
	if rep.OK {
		t.Error("Expected invalid hover request to fail")
	}
}

func TestClearCacheWithoutCache(t *testing.T) {
	srv := newTestServer(t)
	status, rep := post(t, srv, "/api/cache/clear", nil)
	if status != http.StatusInternalServerError || rep.OK || rep.Message == "" {
		t.Errorf("Expected reported failure, got %d %+v", status, rep)
	}
}

func TestConfigAndWeather(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv, "/api/config")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Velocidade do Vento") {
		t.Errorf("Unexpected config %s", body)
	}
	resp, body = get(t, srv, "/api/weather")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "N/A") {
		t.Errorf("Unexpected weather %s", body)
	}
	resp, body = get(t, srv, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "No comparison yet") {
		t.Errorf("Unexpected viewer %s", body)
	}
}
