package compare

import (
	"context"
	"fmt"
	"math"

	"f1lapcompare/pkg/config"
	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/segment"
	"f1lapcompare/pkg/session"
	"f1lapcompare/pkg/telemetry"

	"gonum.org/v1/gonum/floats"
)

// Source is what the engine reads sessions through, usually a *session.Store.
type Source interface {
	Resolve(ctx context.Context, slot session.Slot, driver, selector string) (model.Trace, model.Lap, error)
	Weather() model.Weather
	DriverInfo(driver string) model.DriverInfo
	Circuit() model.CircuitInfo
}

// Request selects the reference lap (1) and the compared lap (2). Laps are
// lap labels as returned by session.Store.LapsForDriver or bare "Lap N".
type Request struct {
	Driver1 string `json:"driver1"`
	Lap1    string `json:"lap1"`
	Driver2 string `json:"driver2"`
	Lap2    string `json:"lap2"`
	Channel string `json:"channel"`
}

type Extremum struct {
	Index    int     `json:"index"`
	Value    float64 `json:"value"`
	Distance float64 `json:"distance"`
}

type Series struct {
	Driver        string    `json:"driver"`
	Lap           int       `json:"lap"`
	Values        []float64 `json:"values"`
	Peak          Extremum  `json:"peak"`
	Color         string    `json:"color"`
	Team          string    `json:"team"`
	Compound      string    `json:"compound"`
	CompoundColor string    `json:"compoundColor,omitempty"`
	Position      string    `json:"position"`
}

// Legend renders as "VER (SOFT, P1)".
func (s Series) Legend() string {
	return fmt.Sprintf("%s (%s, P%s)", s.Driver, s.Compound, s.Position)
}

type Minimap struct {
	Outline []model.Point    `json:"outline"`
	Sectors []segment.Sector `json:"sectors"`
	DRS     []model.Point    `json:"drs"`
}

// Result is everything needed to draw one comparison. Both series are sampled
// on Distance, the reference lap's grid.
type Result struct {
	Channel          Channel        `json:"-"`
	ChannelName      string         `json:"channel"`
	Label            string         `json:"label"`
	Title            string         `json:"title"`
	Caption          string         `json:"caption"`
	Distance         []float64      `json:"distance"`
	Series           [2]Series      `json:"series"`
	SectorBoundaries []float64      `json:"sectorBoundaries"`
	DRSZones         []segment.Zone `json:"drsZones"`
	Minimap          Minimap        `json:"minimap"`
}

type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

func (e *Engine) Compare(ctx context.Context, req Request) (*Result, error) {
	ch, err := ParseChannel(req.Channel)
	if err != nil {
		return nil, err
	}

	tel1, lap1, err := e.src.Resolve(ctx, session.Reference, req.Driver1, req.Lap1)
	if err != nil {
		return nil, err
	}
	tel2, lap2, err := e.src.Resolve(ctx, session.Compared, req.Driver2, req.Lap2)
	if err != nil {
		return nil, err
	}

	weather := e.src.Weather()
	y1, y2, err := channelValues(ch, tel1, tel2, weather)
	if err != nil {
		return nil, err
	}

	dist := tel1.Distances()
	s1 := e.series(req.Driver1, lap1, y1, dist, ch, config.FallbackColorReference)
	s2 := e.series(req.Driver2, lap2, y2, dist, ch, config.FallbackColorCompared)

	boundaries := segment.SectorBoundaries(tel1, e.src.Circuit())
	return &Result{
		Channel:          ch,
		ChannelName:      ch.String(),
		Label:            ch.Label(),
		Title:            fmt.Sprintf("Comparação de %s: %s vs %s", ch, req.Driver1, req.Driver2),
		Caption:          weather.Caption(),
		Distance:         dist,
		Series:           [2]Series{s1, s2},
		SectorBoundaries: boundaries,
		DRSZones:         segment.DRSZones(tel1),
		Minimap: Minimap{
			Outline: tel1.Positions(),
			Sectors: segment.Sectors(tel1, boundaries),
			DRS:     segment.DRSActive(tel1),
		},
	}, nil
}

func channelValues(ch Channel, tel1, tel2 model.Trace, weather model.Weather) ([]float64, []float64, error) {
	switch ch {
	case Delta:
		y1 := telemetry.Delta(tel1, tel2)
		return y1, make([]float64, len(y1)), nil
	case WindSpeed:
		if !weather.WindSpeed.Valid {
			return nil, nil, model.NewError(model.KindChannelUnavailable, nil, "wind speed data is not available for this session")
		}
		y1 := constant(tel1.Len(), weather.WindSpeed.Value)
		return y1, constant(tel1.Len(), weather.WindSpeed.Value), nil
	case DRS:
		if !tel1.HasDRS || !tel2.HasDRS {
			return nil, nil, model.NewError(model.KindChannelUnavailable, nil, "DRS data is not available for this session")
		}
	}
	col, ok := ch.column()
	if !ok {
		return nil, nil, model.NewError(model.KindInvalidChannel, nil, "invalid chart type %q", ch.String())
	}
	return telemetry.Values(tel1, col), telemetry.Interpolate(tel1, tel2, col), nil
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (e *Engine) series(driver string, lap model.Lap, values, dist []float64, ch Channel, fallback string) Series {
	info := e.src.DriverInfo(driver)
	compound := lap.Compound
	if compound == "" {
		compound = config.UnknownCompound
	}
	tireColor, _ := config.TireColor(compound)
	s := Series{
		Driver:        driver,
		Lap:           lap.Number,
		Values:        values,
		Color:         config.TeamColor(info.Team, fallback),
		Team:          info.Team,
		Compound:      compound,
		CompoundColor: tireColor,
		Position:      info.PositionString(),
	}
	if len(values) > 0 {
		s.Peak = Peak(values, ch == Delta)
		s.Peak.Distance = dist[s.Peak.Index]
	}
	return s
}

// Peak returns the first maximum of values. With absolute set it compares
// magnitudes but still reports the signed value.
func Peak(values []float64, absolute bool) Extremum {
	if !absolute {
		i := floats.MaxIdx(values)
		return Extremum{Index: i, Value: values[i]}
	}
	mags := make([]float64, len(values))
	for i, v := range values {
		mags[i] = math.Abs(v)
	}
	i := floats.MaxIdx(mags)
	return Extremum{Index: i, Value: values[i]}
}
