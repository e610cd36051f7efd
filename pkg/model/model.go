package model

import (
	"fmt"
	"time"
)

const (
	NotAvailable = "N/A"
	UnknownTeam  = "Unknown"
)

type SessionKey struct {
	Year    int    `json:"year"`
	Event   string `json:"event"`
	Session string `json:"session"`
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%d %s %s", k.Year, k.Event, k.Session)
}

type Driver struct {
	Number       string `json:"number"`
	Abbreviation string `json:"abbreviation"`
	TeamName     string `json:"teamName"`
}

type Lap struct {
	Driver   string        `json:"driver"`
	Number   int           `json:"lapNumber"`
	Time     time.Duration `json:"lapTime"`
	HasTime  bool          `json:"hasTime"`
	Compound string        `json:"compound"`
}

// Seconds returns the lap time in seconds, only meaningful when HasTime is set.
func (l Lap) Seconds() float64 {
	return l.Time.Seconds()
}

type Sample struct {
	Distance float64       `json:"distance"`
	Time     time.Duration `json:"time"`
	Speed    float64       `json:"speed"`
	Throttle float64       `json:"throttle"`
	Brake    float64       `json:"brake"`
	Gear     float64       `json:"nGear"`
	RPM      float64       `json:"rpm"`
	DRS      float64       `json:"drs"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
}

// Trace is the telemetry of a single lap. Samples are ordered by distance.
type Trace struct {
	Samples []Sample `json:"samples"`
	HasDRS  bool     `json:"hasDrs"`
}

func (t Trace) Len() int {
	return len(t.Samples)
}

func (t Trace) IsEmpty() bool {
	return len(t.Samples) == 0
}

func (t Trace) Distances() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Distance
	}
	return out
}

func (t Trace) TimeSeconds() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = s.Time.Seconds()
	}
	return out
}

// TotalDistance is the distance of the last sample.
func (t Trace) TotalDistance() float64 {
	if t.IsEmpty() {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Distance
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (t Trace) Positions() []Point {
	out := make([]Point, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = Point{X: s.X, Y: s.Y}
	}
	return out
}

type Corner struct {
	Number      int     `json:"number"`
	Distance    float64 `json:"distance"`
	HasDistance bool    `json:"hasDistance"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

type CircuitInfo struct {
	Corners []Corner `json:"corners"`
}

// WeatherSample is one row of the provider's weather feed; nil fields were not reported.
type WeatherSample struct {
	TrackTemp *float64
	AirTemp   *float64
	Rainfall  *bool
	WindSpeed *float64
}

// Measure is a value that may be unavailable.
type Measure struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func NewMeasure(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// IntString renders the measure truncated to an integer.
func (m Measure) IntString() string {
	if !m.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%d", int(m.Value))
}

func (m Measure) String() string {
	if !m.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f", m.Value)
}

type Weather struct {
	TrackTemp Measure `json:"trackTemp"`
	AirTemp   Measure `json:"airTemp"`
	Rain      bool    `json:"rain"`
	WindSpeed Measure `json:"windSpeed"`
}

// UnavailableWeather is returned when there is no session or no weather data.
func UnavailableWeather() Weather {
	return Weather{}
}

func (w Weather) Caption() string {
	rain := "Não"
	if w.Rain {
		rain = "Sim"
	}
	return fmt.Sprintf("Temp. Pista: %s°C, Temp. Ar: %s°C, Chuva: %s", w.TrackTemp.IntString(), w.AirTemp.IntString(), rain)
}

type DriverInfo struct {
	Team     string `json:"team"`
	Position int    `json:"position"`
}

func (d DriverInfo) PositionString() string {
	if d.Position <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d", d.Position)
}

type Session struct {
	Key     SessionKey
	Drivers []Driver
	Laps    []Lap
	// Results maps driver abbreviation to classified position.
	Results map[string]int
	Weather []WeatherSample
	Circuit CircuitInfo
}

func (s *Session) Abbreviations() []string {
	out := make([]string, 0, len(s.Drivers))
	for _, d := range s.Drivers {
		out = append(out, d.Abbreviation)
	}
	return out
}

func (s *Session) GetDriver(abbreviation string) (Driver, bool) {
	for _, d := range s.Drivers {
		if d.Abbreviation == abbreviation {
			return d, true
		}
	}
	return Driver{}, false
}

func (s *Session) PickDriver(abbreviation string) []Lap {
	laps := []Lap{}
	for _, l := range s.Laps {
		if l.Driver == abbreviation {
			laps = append(laps, l)
		}
	}
	return laps
}

// SessionLoaded is announced after a session was fetched from the provider.
type SessionLoaded struct {
	Key     SessionKey `json:"key"`
	Drivers int        `json:"drivers"`
	Laps    int        `json:"laps"`
}

func (e SessionLoaded) String() string {
	return fmt.Sprintf("%s: %d drivers, %d laps", e.Key, e.Drivers, e.Laps)
}
