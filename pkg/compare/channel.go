package compare

import (
	"strings"

	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/telemetry"
)

type Channel int

const (
	Speed Channel = iota
	Delta
	Throttle
	Brake
	Gear
	RPM
	DRS
	WindSpeed
)

// Channels lists every channel in menu order.
var Channels = []Channel{Speed, Delta, Throttle, Brake, Gear, RPM, DRS, WindSpeed}

var channelNames = map[Channel]string{
	Speed:     "Velocidade",
	Delta:     "Delta",
	Throttle:  "Acelerador",
	Brake:     "Freio",
	Gear:      "Marcha",
	RPM:       "RPM",
	DRS:       "DRS",
	WindSpeed: "Velocidade do Vento",
}

var channelLabels = map[Channel]string{
	Speed:     "Velocidade (km/h)",
	Delta:     "Delta (s)",
	Throttle:  "Acelerador (%)",
	Brake:     "Freio (%)",
	Gear:      "Marcha",
	RPM:       "RPM",
	DRS:       "DRS (Ativado=1, Desativado=0)",
	WindSpeed: "Velocidade do Vento (km/h)",
}

var channelAliases = map[string]Channel{
	"speed":      Speed,
	"throttle":   Throttle,
	"brake":      Brake,
	"gear":       Gear,
	"ngear":      Gear,
	"wind":       WindSpeed,
	"wind speed": WindSpeed,
	"windspeed":  WindSpeed,
}

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Label is the y axis label of the channel.
func (c Channel) Label() string {
	return channelLabels[c]
}

// column is the telemetry column backing a plain channel.
func (c Channel) column() (telemetry.Column, bool) {
	switch c {
	case Speed:
		return telemetry.Speed, true
	case Throttle:
		return telemetry.Throttle, true
	case Brake:
		return telemetry.Brake, true
	case Gear:
		return telemetry.Gear, true
	case RPM:
		return telemetry.RPM, true
	case DRS:
		return telemetry.DRS, true
	}
	return 0, false
}

// ParseChannel accepts display names and English aliases, ignoring case.
func ParseChannel(name string) (Channel, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, display := range channelNames {
		if strings.ToLower(display) == n {
			return c, nil
		}
	}
	if c, ok := channelAliases[n]; ok {
		return c, nil
	}
	return 0, model.NewError(model.KindInvalidChannel, nil, "invalid chart type %q", name)
}
