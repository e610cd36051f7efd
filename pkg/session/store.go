package session

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"f1lapcompare/pkg/model"
	"f1lapcompare/pkg/pubsub"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	MsgLoaded        = "Session loaded successfully"
	MsgAlreadyLoaded = "Session already loaded, using existing data"
	MsgCacheCleared  = "Cache cleared successfully"
)

type Provider interface {
	LoadSession(ctx context.Context, key model.SessionKey) (*model.Session, error)
	LapTelemetry(ctx context.Context, key model.SessionKey, driver string, lap int) (model.Trace, error)
}

type Clearer interface {
	Clear() error
}

type Publisher interface {
	Publish(topic string, data model.SessionLoaded)
}

type LoadResult struct {
	Drivers []string `json:"drivers"`
	Cached  bool     `json:"cached"`
	Message string   `json:"message"`
}

// Store holds the loaded session and the laps resolved for each comparison slot.
type Store struct {
	provider  Provider
	cache     Clearer
	publisher Publisher
	timeout   time.Duration

	mu       sync.Mutex
	session  *model.Session
	key      model.SessionKey
	keyValid bool
	slots    [2]slotLaps
}

type slotLaps struct {
	driver string
	laps   []model.Lap
}

func NewStore(provider Provider, cache Clearer, timeout time.Duration) *Store {
	return &Store{
		provider:  provider,
		cache:     cache,
		publisher: pubsub.SessionLoadedPubSub,
		timeout:   timeout,
	}
}

// SetPublisher replaces the bus SessionLoaded events go to. nil disables them.
func (s *Store) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Load(ctx context.Context, key model.SessionKey) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keyValid && s.key == key && s.session != nil {
		return LoadResult{Drivers: s.session.Abbreviations(), Cached: true, Message: MsgAlreadyLoaded}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	log.Printf("Loading session %s\n", key)
	sess, err := s.provider.LoadSession(ctx, key)
	if err != nil {
		return LoadResult{}, model.NewError(model.KindSessionLoad, err, "failed to load session %s", key)
	}
	if len(sess.Drivers) == 0 {
		return LoadResult{}, model.NewError(model.KindSessionLoad, nil, "no drivers found in session %s", key)
	}
	if len(sess.Laps) == 0 {
		return LoadResult{}, model.NewError(model.KindSessionLoad, nil, "no laps were loaded for session %s", key)
	}

	s.session = sess
	s.key = key
	s.keyValid = true
	s.slots = [2]slotLaps{}

	if s.publisher != nil {
		s.publisher.Publish(pubsub.TopicSessionLoaded, model.SessionLoaded{Key: key, Drivers: len(sess.Drivers), Laps: len(sess.Laps)})
	}
	log.Printf("Session %s loaded: %d drivers, %d laps\n", key, len(sess.Drivers), len(sess.Laps))
	return LoadResult{Drivers: sess.Abbreviations(), Message: MsgLoaded}, nil
}

// Key returns the identity of the loaded session.
func (s *Store) Key() (model.SessionKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return model.SessionKey{}, false
	}
	return s.session.Key, true
}

func (s *Store) Drivers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.Abbreviations()
}

// LapsForDriver resolves the laps of driver into slot and returns their labels
// ordered by lap number.
func (s *Store) LapsForDriver(driver string, slot Slot) ([]string, error) {
	idx, err := slot.index()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	laps, err := s.fillSlotLocked(idx, driver)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(laps))
	for _, l := range laps {
		labels = append(labels, LapLabel(l))
	}
	return labels, nil
}

// fillSlotLocked must be called with s.mu held.
func (s *Store) fillSlotLocked(idx int, driver string) ([]model.Lap, error) {
	if driver == "" || s.session == nil {
		return nil, model.NewError(model.KindNoLaps, nil, "driver or session not selected")
	}
	laps := s.session.PickDriver(driver)
	if len(laps) == 0 {
		return nil, model.NewError(model.KindNoLaps, nil, "no laps found for %s", driver)
	}
	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].Number < laps[j].Number
	})
	s.slots[idx] = slotLaps{driver: driver, laps: laps}
	return laps, nil
}

// Laps returns the laps of driver ordered by lap number without touching the
// slots.
func (s *Store) Laps(driver string) []model.Lap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	laps := s.session.PickDriver(driver)
	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].Number < laps[j].Number
	})
	return laps
}

// SlotDriver returns the driver whose laps are resolved in slot.
func (s *Store) SlotDriver(slot Slot) (string, bool) {
	idx, err := slot.index()
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[idx]
	return sl.driver, sl.driver != ""
}

func LapLabel(l model.Lap) string {
	if !l.HasTime {
		return fmt.Sprintf("Lap %d - no time", l.Number)
	}
	return fmt.Sprintf("Lap %d - %.3fs", l.Number, l.Seconds())
}

var lapSelector = regexp.MustCompile(`^\s*Lap\s+(\d+)\b`)

// ParseLapSelector extracts the lap number from a label such as "Lap 12 - 81.234s".
func ParseLapSelector(selector string) (int, bool) {
	m := lapSelector.FindStringSubmatch(selector)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Store) Telemetry(ctx context.Context, slot Slot, selector string) (model.Trace, model.Lap, error) {
	idx, err := slot.index()
	if err != nil {
		return model.Trace{}, model.Lap{}, err
	}

	s.mu.Lock()
	key := s.key
	lap, err := selectLap(s.slots[idx].laps, slot, selector)
	s.mu.Unlock()
	if err != nil {
		return model.Trace{}, model.Lap{}, err
	}
	return s.fetch(ctx, key, lap)
}

// Resolve fills slot with the laps of driver and picks the lap named by
// selector in a single step, so a concurrent caller cannot swap the slot
// between both. Telemetry is fetched after the lock is released.
func (s *Store) Resolve(ctx context.Context, slot Slot, driver, selector string) (model.Trace, model.Lap, error) {
	idx, err := slot.index()
	if err != nil {
		return model.Trace{}, model.Lap{}, err
	}

	s.mu.Lock()
	key := s.key
	laps, err := s.fillSlotLocked(idx, driver)
	var lap model.Lap
	if err == nil {
		lap, err = selectLap(laps, slot, selector)
	}
	s.mu.Unlock()
	if err != nil {
		return model.Trace{}, model.Lap{}, err
	}
	return s.fetch(ctx, key, lap)
}

func selectLap(laps []model.Lap, slot Slot, selector string) (model.Lap, error) {
	number, ok := ParseLapSelector(selector)
	if !ok {
		return model.Lap{}, model.NewError(model.KindNoLaps, nil, "invalid lap selection %q", selector)
	}
	for _, l := range laps {
		if l.Number == number {
			return l, nil
		}
	}
	return model.Lap{}, model.NewError(model.KindNoLaps, nil, "lap %d is not available for slot %d", number, slot)
}

func (s *Store) fetch(ctx context.Context, key model.SessionKey, lap model.Lap) (model.Trace, model.Lap, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	trace, err := s.provider.LapTelemetry(ctx, key, lap.Driver, lap.Number)
	if err != nil {
		return model.Trace{}, model.Lap{}, model.NewError(model.KindTelemetryLoad, err, "failed to load telemetry of %s lap %d", lap.Driver, lap.Number)
	}
	if trace.IsEmpty() {
		return model.Trace{}, model.Lap{}, model.NewError(model.KindEmptyTelemetry, nil, "empty telemetry for %s lap %d", lap.Driver, lap.Number)
	}
	return trace, lap, nil
}

// Weather summarizes the session weather feed. Fields without any reported
// value are unavailable.
func (s *Store) Weather() model.Weather {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || len(s.session.Weather) == 0 {
		return model.UnavailableWeather()
	}

	var track, air, wind, rain []float64
	for _, w := range s.session.Weather {
		if w.TrackTemp != nil {
			track = append(track, *w.TrackTemp)
		}
		if w.AirTemp != nil {
			air = append(air, *w.AirTemp)
		}
		if w.WindSpeed != nil {
			wind = append(wind, *w.WindSpeed)
		}
		if w.Rainfall != nil {
			r := 0.0
			if *w.Rainfall {
				r = 1
			}
			rain = append(rain, r)
		}
	}

	return model.Weather{
		TrackTemp: mean(track),
		AirTemp:   mean(air),
		Rain:      len(rain) > 0 && stat.Mean(rain, nil) > 0,
		WindSpeed: mean(wind),
	}
}

func mean(xs []float64) model.Measure {
	if len(xs) == 0 {
		return model.Measure{}
	}
	return model.NewMeasure(stat.Mean(xs, nil))
}

func (s *Store) DriverInfo(driver string) model.DriverInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := model.DriverInfo{Team: model.UnknownTeam}
	if s.session == nil {
		return info
	}
	if d, ok := s.session.GetDriver(driver); ok && d.TeamName != "" {
		info.Team = d.TeamName
	}
	info.Position = s.session.Results[driver]
	return info
}

func (s *Store) Circuit() model.CircuitInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return model.CircuitInfo{}
	}
	return s.session.Circuit
}

// ClearCache empties the on-disk response cache. The loaded session stays
// usable but the next Load goes to the provider again.
func (s *Store) ClearCache() (string, error) {
	if s.cache == nil {
		return "", errors.New("no response cache configured")
	}
	if err := s.cache.Clear(); err != nil {
		log.Printf("Error clearing cache: %s\n", err)
		return "", errors.Wrap(err, "failed to clear cache")
	}

	s.mu.Lock()
	s.keyValid = false
	s.mu.Unlock()
	return MsgCacheCleared, nil
}
