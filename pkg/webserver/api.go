package webserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/compare"
	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/layout"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/session"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type reply struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

var errNoComparison = errors.New("no comparison has been made yet")

func (m *Manager) apiHandlers(r *mux.Router) {
	r.HandleFunc("/config", m.configHandler).Methods(http.MethodGet)
	r.HandleFunc("/session", m.loadHandler).Methods(http.MethodPost)
	r.HandleFunc("/drivers", m.driversHandler).Methods(http.MethodGet)
	r.HandleFunc("/drivers/{driver}/laps", m.lapsHandler).Methods(http.MethodGet)
	r.HandleFunc("/drivers/{driver}", m.driverHandler).Methods(http.MethodGet)
	r.HandleFunc("/weather", m.weatherHandler).Methods(http.MethodGet)
	r.HandleFunc("/compare", m.compareHandler).Methods(http.MethodPost)
	r.HandleFunc("/chart/zoom/{direction:in|out|reset}", m.zoomHandler).Methods(http.MethodPost)
	r.HandleFunc("/chart.{format:png|svg}", m.chartHandler).Methods(http.MethodGet)
	r.HandleFunc("/minimap.{format:png|svg}", m.minimapHandler).Methods(http.MethodGet)
	r.HandleFunc("/export", m.exportHandler).Methods(http.MethodPost)
	r.HandleFunc("/cache/clear", m.clearCacheHandler).Methods(http.MethodPost)
	r.HandleFunc("/hover", m.hoverHandler())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %s\n", err)
	}
}

func writeOK(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, reply{OK: true, Message: message, Data: data})
}

func fail(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), reply{OK: false, Message: err.Error()})
}

func statusFor(err error) int {
	kind, found := model.KindOf(err)
	if !found {
		if err == errNoComparison {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	}
	switch kind {
	case model.KindInvalidChannel, model.KindInvalidSlot:
		return http.StatusBadRequest
	case model.KindNoLaps:
		return http.StatusNotFound
	case model.KindChannelUnavailable, model.KindEmptyTelemetry:
		return http.StatusUnprocessableEntity
	case model.KindSessionLoad, model.KindTelemetryLoad:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, reply{OK: false, Message: message})
}

func (m *Manager) configHandler(w http.ResponseWriter, r *http.Request) {
	channels := make([]string, 0, len(compare.Channels))
	for _, c := range compare.Channels {
		channels = append(channels, c.String())
	}
	writeOK(w, "", map[string]interface{}{
		"sessionTypes": config.SessionTypes,
		"channels":     channels,
		"teamColors":   config.TeamColors,
		"tireColors":   config.TireColors,
	})
}

func (m *Manager) loadHandler(w http.ResponseWriter, r *http.Request) {
	var key model.SessionKey
	if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
		badRequest(w, "invalid session request: "+err.Error())
		return
	}
	if !config.ValidSessionType(key.Session) {
		badRequest(w, "unknown session type "+strconv.Quote(key.Session))
		return
	}
	res, err := m.sessions.Load(r.Context(), key)
	if err != nil {
		fail(w, err)
		return
	}
	writeOK(w, res.Message, res)
}

type driversReply struct {
	Session model.SessionKey `json:"session"`
	Drivers []string         `json:"drivers"`
	Slots   [2]string        `json:"slots"`
}

// driversHandler lists the drivers of the loaded session and the driver
// currently resolved in each comparison slot.
func (m *Manager) driversHandler(w http.ResponseWriter, r *http.Request) {
	key, loaded := m.sessions.Key()
	if !loaded {
		fail(w, model.NewError(model.KindNoLaps, nil, "no session loaded"))
		return
	}
	rep := driversReply{Session: key, Drivers: m.sessions.Drivers()}
	for i, slot := range []session.Slot{session.Reference, session.Compared} {
		rep.Slots[i], _ = m.sessions.SlotDriver(slot)
	}
	writeOK(w, key.String(), rep)
}

func (m *Manager) lapsHandler(w http.ResponseWriter, r *http.Request) {
	driver := mux.Vars(r)["driver"]
	slot := session.Reference
	if s := r.URL.Query().Get("slot"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			badRequest(w, "invalid slot "+strconv.Quote(s))
			return
		}
		slot = session.Slot(n)
	}
	laps, err := m.sessions.LapsForDriver(driver, slot)
	if err != nil {
		fail(w, err)
		return
	}
	writeOK(w, "", laps)
}

func (m *Manager) driverHandler(w http.ResponseWriter, r *http.Request) {
	info := m.sessions.DriverInfo(mux.Vars(r)["driver"])
	writeOK(w, "", map[string]string{"team": info.Team, "position": info.PositionString()})
}

func (m *Manager) weatherHandler(w http.ResponseWriter, r *http.Request) {
	weather := m.sessions.Weather()
	writeOK(w, weather.Caption(), map[string]interface{}{
		"trackTemp": weather.TrackTemp.IntString(),
		"airTemp":   weather.AirTemp.IntString(),
		"rain":      weather.Rain,
		"windSpeed": weather.WindSpeed.String(),
	})
}

func (m *Manager) compareHandler(w http.ResponseWriter, r *http.Request) {
	var req compare.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid comparison request: "+err.Error())
		return
	}
	res, err := m.comparer.Compare(r.Context(), req)
	if err != nil {
		fail(w, err)
		return
	}
	m.setCurrent(res)
	writeOK(w, "Chart plotted successfully", res)
}

func (m *Manager) zoomHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	if m.last == nil {
		m.mu.Unlock()
		fail(w, errNoComparison)
		return
	}
	switch mux.Vars(r)["direction"] {
	case "in":
		m.view = m.view.ZoomIn()
	case "out":
		m.view = m.view.ZoomOut()
	default:
		m.view = chart.FitView(m.last)
	}
	view := m.view
	m.mu.Unlock()
	cx, cy := view.Center()
	writeOK(w, fmt.Sprintf("View centered at %.0f m, %.1f", cx, cy), view)
}

func contentType(format string) string {
	if format == chart.FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (m *Manager) chartHandler(w http.ResponseWriter, r *http.Request) {
	res, view := m.current()
	if res == nil {
		fail(w, errNoComparison)
		return
	}
	format := mux.Vars(r)["format"]
	w.Header().Set("Content-Type", contentType(format))
	if err := chart.Render(w, res, view, format); err != nil {
		log.Printf("Error rendering chart: %s\n", err)
	}
}

func (m *Manager) minimapHandler(w http.ResponseWriter, r *http.Request) {
	res, _ := m.current()
	if res == nil {
		fail(w, errNoComparison)
		return
	}
	var marker *model.Point
	if d := r.URL.Query().Get("distance"); d != "" {
		distance, err := strconv.ParseFloat(d, 64)
		if err != nil {
			badRequest(w, "invalid distance "+strconv.Quote(d))
			return
		}
		if hp, found := compare.Hover(res, distance); found {
			marker = &hp.Position
		}
	}

	format := mux.Vars(r)["format"]
	w.Header().Set("Content-Type", contentType(format))
	var err error
	if format == chart.FormatSVG {
		err = layout.BuildSVG(w, layout.FromResult(res), marker)
	} else {
		err = layout.BuildPNG(w, layout.FromResult(res), marker)
	}
	if err != nil {
		log.Printf("Error rendering minimap: %s\n", err)
	}
}

func (m *Manager) exportHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = chart.FormatPNG
	}
	if !chart.ValidFormat(format) {
		badRequest(w, "unsupported format "+strconv.Quote(format))
		return
	}
	res, view := m.current()
	if res == nil {
		fail(w, errNoComparison)
		return
	}
	path, err := chart.Export(m.exportsDir, res, view, format)
	if err != nil {
		fail(w, err)
		return
	}
	writeOK(w, "Chart exported as "+path, path)
}

func (m *Manager) clearCacheHandler(w http.ResponseWriter, r *http.Request) {
	msg, err := m.sessions.ClearCache()
	if err != nil {
		fail(w, err)
		return
	}
	writeOK(w, msg, nil)
}
