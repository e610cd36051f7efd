package provider

import (
	"sort"
	"time"

	"f1lapcompare/pkg/model"

	"github.com/pkg/errors"
)

// JSON documents served by the timing provider. Nullable fields are pointers.

type sessionDocument struct {
	Drivers []driverDocument  `json:"drivers"`
	Laps    []lapDocument     `json:"laps"`
	Results []resultDocument  `json:"results"`
	Weather []weatherDocument `json:"weather"`
	Circuit *circuitDocument  `json:"circuit"`
}

type driverDocument struct {
	Number       string `json:"number"`
	Abbreviation string `json:"abbreviation"`
	TeamName     string `json:"teamName"`
}

type lapDocument struct {
	Driver    string   `json:"driver"`
	LapNumber *float64 `json:"lapNumber"`
	LapTime   *float64 `json:"lapTime"`
	Compound  string   `json:"compound"`
}

type resultDocument struct {
	Abbreviation string   `json:"abbreviation"`
	Position     *float64 `json:"position"`
}

type weatherDocument struct {
	TrackTemp *float64 `json:"trackTemp"`
	AirTemp   *float64 `json:"airTemp"`
	Rainfall  *bool    `json:"rainfall"`
	WindSpeed *float64 `json:"windSpeed"`
}

type circuitDocument struct {
	Corners []cornerDocument `json:"corners"`
}

type cornerDocument struct {
	Number   int      `json:"number"`
	Distance *float64 `json:"distance"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

type telemetryDocument struct {
	Samples []sampleDocument `json:"samples"`
}

type sampleDocument struct {
	Distance *float64 `json:"distance"`
	Time     *float64 `json:"time"`
	Speed    *float64 `json:"speed"`
	Throttle *float64 `json:"throttle"`
	Brake    *float64 `json:"brake"`
	NGear    *float64 `json:"nGear"`
	RPM      *float64 `json:"rpm"`
	DRS      *float64 `json:"drs"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (d sessionDocument) toSession(key model.SessionKey) (*model.Session, error) {
	s := &model.Session{
		Key:     key,
		Results: map[string]int{},
	}
	for i, dd := range d.Drivers {
		if dd.Abbreviation == "" {
			return nil, errors.Errorf("driver %d has no abbreviation", i)
		}
		s.Drivers = append(s.Drivers, model.Driver{
			Number:       dd.Number,
			Abbreviation: dd.Abbreviation,
			TeamName:     dd.TeamName,
		})
	}
	for i, ld := range d.Laps {
		if ld.LapNumber == nil {
			return nil, errors.Errorf("lap %d of %s has no lap number", i, ld.Driver)
		}
		lap := model.Lap{
			Driver:   ld.Driver,
			Number:   int(*ld.LapNumber),
			Compound: ld.Compound,
		}
		if ld.LapTime != nil {
			lap.Time = seconds(*ld.LapTime)
			lap.HasTime = true
		}
		s.Laps = append(s.Laps, lap)
	}
	sort.SliceStable(s.Laps, func(i, j int) bool {
		if s.Laps[i].Driver != s.Laps[j].Driver {
			return s.Laps[i].Driver < s.Laps[j].Driver
		}
		return s.Laps[i].Number < s.Laps[j].Number
	})
	for _, rd := range d.Results {
		if rd.Position != nil {
			s.Results[rd.Abbreviation] = int(*rd.Position)
		}
	}
	for _, wd := range d.Weather {
		s.Weather = append(s.Weather, model.WeatherSample{
			TrackTemp: wd.TrackTemp,
			AirTemp:   wd.AirTemp,
			Rainfall:  wd.Rainfall,
			WindSpeed: wd.WindSpeed,
		})
	}
	if d.Circuit != nil {
		for _, cd := range d.Circuit.Corners {
			c := model.Corner{Number: cd.Number, X: cd.X, Y: cd.Y}
			if cd.Distance != nil {
				c.Distance = *cd.Distance
				c.HasDistance = true
			}
			s.Circuit.Corners = append(s.Circuit.Corners, c)
		}
	}
	return s, nil
}

// toTrace validates samples: distance is mandatory and non-decreasing, every
// other missing channel value becomes zero.
func (d telemetryDocument) toTrace() (model.Trace, error) {
	t := model.Trace{Samples: make([]model.Sample, 0, len(d.Samples))}
	last := 0.0
	for i, sd := range d.Samples {
		if sd.Distance == nil {
			return model.Trace{}, errors.Errorf("sample %d has no distance", i)
		}
		if i > 0 && *sd.Distance < last {
			return model.Trace{}, errors.Errorf("sample %d distance %.3f decreases from %.3f", i, *sd.Distance, last)
		}
		last = *sd.Distance
		if sd.DRS != nil {
			t.HasDRS = true
		}
		t.Samples = append(t.Samples, model.Sample{
			Distance: *sd.Distance,
			Time:     seconds(orZero(sd.Time)),
			Speed:    orZero(sd.Speed),
			Throttle: orZero(sd.Throttle),
			Brake:    orZero(sd.Brake),
			Gear:     orZero(sd.NGear),
			RPM:      orZero(sd.RPM),
			DRS:      orZero(sd.DRS),
			X:        orZero(sd.X),
			Y:        orZero(sd.Y),
		})
	}
	return t, nil
}
