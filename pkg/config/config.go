package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	DefaultProviderURL     = "http://localhost:8000"
	DefaultProviderTimeout = 60 * time.Second
	DefaultCacheDir        = "cache_f1"
	DefaultExportsDir      = "./exports"
	DefaultWebserverAddr   = ":8080"

	FallbackColorReference = "#FF3333"
	FallbackColorCompared  = "#00FFFF"
	UnknownCompound        = "Unknown"
)

var TeamColors = map[string]string{
	"Red Bull Racing": "#1E90FF",
	"Ferrari":         "#8B0000",
	"McLaren":         "#FFA500",
	"Mercedes":        "#C0C0C0",
	"Aston Martin":    "#006400",
	"Alpine":          "#FF69B4",
	"Williams":        "#00008B",
	"Racing Bulls":    "#FFFFFF",
	"RB":              "#FFFFFF",
	"Toro Rosso":      "#FFFFFF",
	"Haas F1 Team":    "#000000",
	"Haas":            "#000000",
	"Kick Sauber":     "#00FF00",
	"Sauber":          "#00FF00",
}

var TireColors = map[string]string{
	"SOFT":         "#FF3333",
	"MEDIUM":       "#FFFF00",
	"HARD":         "#FFFFFF",
	"INTERMEDIATE": "#00FF00",
	"WET":          "#00FFFF",
}

var SessionTypes = []string{"FP1", "FP2", "FP3", "Q", "R", "Sprint", "Sprint Shootout"}

var SectorColors = []string{"#FF5555", "#55FF55", "#5555FF"}

const DRSColor = "#00FF00"

// TeamColor returns the display color of a team or fallback when the team is not known.
func TeamColor(team, fallback string) string {
	if c, ok := TeamColors[team]; ok {
		return c
	}
	return fallback
}

func TireColor(compound string) (string, bool) {
	c, ok := TireColors[compound]
	return c, ok
}

func ValidSessionType(s string) bool {
	for _, st := range SessionTypes {
		if st == s {
			return true
		}
	}
	return false
}

type Settings struct {
	ProviderURL      string
	ProviderTimeout  time.Duration
	CacheDir         string
	ExportsDir       string
	WebserverAddress string
	TelegramToken    string
	MockProviderPort int
}

func FromEnv() Settings {
	s := Settings{
		ProviderURL:      DefaultProviderURL,
		ProviderTimeout:  DefaultProviderTimeout,
		CacheDir:         DefaultCacheDir,
		ExportsDir:       DefaultExportsDir,
		WebserverAddress: DefaultWebserverAddr,
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
	}
	if v := os.Getenv("PROVIDER_URL"); v != "" {
		s.ProviderURL = v
	}
	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid PROVIDER_TIMEOUT %q, using %s: %s\n", v, s.ProviderTimeout, err)
		} else {
			s.ProviderTimeout = d
		}
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		s.CacheDir = v
	}
	if v := os.Getenv("EXPORTS_DIR"); v != "" {
		s.ExportsDir = v
	}
	if v := os.Getenv("WEBSERVER_ADDRESS"); v != "" {
		s.WebserverAddress = v
	}
	if v := os.Getenv("MOCK_PROVIDER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid MOCK_PROVIDER_PORT %q: %s\n", v, err)
		} else {
			s.MockProviderPort = port
		}
	}
	return s
}
