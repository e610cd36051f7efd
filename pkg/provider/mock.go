package provider

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"

	"f1lapcompare/pkg/config"

	"github.com/gorilla/mux"
)

const (
	mockTrackLength = 5000.0
	mockStep        = 10.0
	mockLaps        = 5
)

type mockDriver struct {
	number string
	abbr   string
	team   string
	pace   float64
}

var mockDrivers = []mockDriver{
	{"1", "VER", "Red Bull Racing", 1.000},
	{"4", "NOR", "McLaren", 0.997},
	{"16", "LEC", "Ferrari", 0.994},
	{"44", "HAM", "Ferrari", 0.991},
	{"63", "RUS", "Mercedes", 0.989},
}

var mockCompounds = []string{"SOFT", "MEDIUM", "HARD"}

// NewMockHandler serves synthetic sessions for any year, event and session
// type with the same paths and documents as the real provider.
func NewMockHandler() http.Handler {
	const session = "/v1/sessions/{year:[0-9]+}/{event}/{session}"
	r := mux.NewRouter()
	r.HandleFunc(session, mockSessionHandler).Methods(http.MethodGet)
	r.HandleFunc(session+"/laps/{driver}/{lap:[0-9]+}/telemetry", mockTelemetryHandler).Methods(http.MethodGet)
	return r
}

func writeDocument(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing mock document: %s\n", err)
	}
}

func ptr(v float64) *float64 { return &v }

func mockSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !config.ValidSessionType(mux.Vars(r)["session"]) {
		http.Error(w, "unknown session type", http.StatusNotFound)
		return
	}

	doc := sessionDocument{Circuit: &circuitDocument{}}
	for i, d := range mockDrivers {
		doc.Drivers = append(doc.Drivers, driverDocument{Number: d.number, Abbreviation: d.abbr, TeamName: d.team})
		doc.Results = append(doc.Results, resultDocument{Abbreviation: d.abbr, Position: ptr(float64(i + 1))})
		for lap := 1; lap <= mockLaps; lap++ {
			ld := lapDocument{
				Driver:    d.abbr,
				LapNumber: ptr(float64(lap)),
				Compound:  mockCompounds[(i+lap)%len(mockCompounds)],
			}
			if lap > 1 {
				ld.LapTime = ptr(mockLapTime(d, lap))
			}
			doc.Laps = append(doc.Laps, ld)
		}
	}
	for i := 0; i < 10; i++ {
		rain := i >= 8
		doc.Weather = append(doc.Weather, weatherDocument{
			TrackTemp: ptr(38 + float64(i)*0.3),
			AirTemp:   ptr(24 + float64(i)*0.1),
			Rainfall:  &rain,
			WindSpeed: ptr(1.5 + float64(i%3)*0.5),
		})
	}
	for n, frac := range []float64{0.08, 0.2, 0.33, 0.47, 0.58, 0.7, 0.83, 0.95} {
		p := mockPosition(frac * mockTrackLength)
		doc.Circuit.Corners = append(doc.Circuit.Corners, cornerDocument{
			Number:   n + 1,
			Distance: ptr(frac * mockTrackLength),
			X:        p[0],
			Y:        p[1],
		})
	}
	writeDocument(w, doc)
}

func mockDriverByAbbreviation(abbr string) (mockDriver, bool) {
	for _, d := range mockDrivers {
		if d.abbr == abbr {
			return d, true
		}
	}
	return mockDriver{}, false
}

func mockTelemetryHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	d, found := mockDriverByAbbreviation(vars["driver"])
	lap, _ := strconv.Atoi(vars["lap"])
	if !found || lap < 1 || lap > mockLaps {
		http.Error(w, "no telemetry for lap", http.StatusNotFound)
		return
	}
	writeDocument(w, telemetryDocument{Samples: mockSamples(d, lap)})
}

// mockSpeed is the speed in km/h at distance along the lap. Corners slow the
// car down four times per lap.
func mockSpeed(d mockDriver, lap int, distance float64) float64 {
	theta := 2 * math.Pi * distance / mockTrackLength
	corner := math.Abs(math.Sin(2 * theta))
	return (310 - 190*corner*corner) * d.pace * (1 - 0.002*float64(lap%3))
}

func mockPosition(distance float64) [2]float64 {
	theta := 2 * math.Pi * distance / mockTrackLength
	return [2]float64{1200 * math.Cos(theta), 600 * math.Sin(theta)}
}

func mockSamples(d mockDriver, lap int) []sampleDocument {
	samples := []sampleDocument{}
	elapsed := 0.0
	prev := mockSpeed(d, lap, 0)
	for dist := 0.0; dist <= mockTrackLength; dist += mockStep {
		speed := mockSpeed(d, lap, dist)
		if dist > 0 {
			elapsed += mockStep / ((speed + prev) / 2 / 3.6)
		}
		throttle, brake := 100.0, 0.0
		if speed < prev {
			throttle, brake = 0, math.Min(100, (prev-speed)*20)
		}
		gear := math.Min(8, math.Max(1, math.Ceil(speed/40)))
		drs := 0.0
		if speed > 290 && lap%2 == 0 {
			drs = 12
		}
		p := mockPosition(dist)
		samples = append(samples, sampleDocument{
			Distance: ptr(dist),
			Time:     ptr(elapsed),
			Speed:    ptr(speed),
			Throttle: ptr(throttle),
			Brake:    ptr(brake),
			NGear:    ptr(gear),
			RPM:      ptr(10500 + 1500*(speed/40-math.Floor(speed/40))),
			DRS:      ptr(drs),
			X:        ptr(p[0]),
			Y:        ptr(p[1]),
		})
		prev = speed
	}
	return samples
}

func mockLapTime(d mockDriver, lap int) float64 {
	samples := mockSamples(d, lap)
	return *samples[len(samples)-1].Time
}
