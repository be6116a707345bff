package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/namaz/internal/api"
	"github.com/smokyabdulrahman/namaz/internal/cache"
	"github.com/smokyabdulrahman/namaz/internal/config"
	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
	"github.com/smokyabdulrahman/namaz/internal/store"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

// defaultTableName is looked up in the data directory when neither
// table_path nor table_url is configured.
const defaultTableName = "prayer_times.json"

// session bundles what a command needs: config, clock, preferences and
// the prayer table.
type session struct {
	cfg   *config.Config
	loc   *time.Location
	kv    store.KV
	prefs *prefs.Preferences
	table *liveTable
	out   io.Writer
}

// openSession loads preferences and the prayer table for cmd.
func openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg := effectiveConfig(cmd)

	kv, err := store.Open(ctx, store.Options{
		Backend:       cfg.Store,
		DSN:           cfg.StoreDSN,
		RedisPassword: cfg.RedisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}

	s := &session{
		cfg:   cfg,
		loc:   cfg.Location(),
		kv:    kv,
		prefs: prefs.New(kv),
		table: &liveTable{},
		out:   cmd.OutOrStdout(),
	}
	if err := s.loadTable(ctx); err != nil {
		kv.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}

// now is the current instant in the configured zone.
func (s *session) now() time.Time {
	return nowFunc().In(s.loc)
}

// city is --city when given, otherwise the stored selection. It must exist
// in the table.
func (s *session) city(ctx context.Context) (string, error) {
	city := strings.TrimSpace(FlagCity)
	if city == "" {
		city = s.prefs.SelectedCity(ctx)
	}
	if !s.table.HasCity(city) {
		return "", fmt.Errorf("%w: %q (run `namaz cities` for the list)", timetable.ErrCityNotFound, city)
	}
	return city, nil
}

// loadTable reads the data file, or fetches the selected city's next days
// from the companion service when table_url is set.
func (s *session) loadTable(ctx context.Context) error {
	if s.remote() {
		return s.fetchTable(ctx)
	}

	path := s.cfg.TablePath
	if path == "" {
		dir, err := store.DataDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, defaultTableName)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no prayer table at %s: set table_path or table_url, or pass --table", path)
		}
	}

	t, err := timetable.Load(path)
	if err != nil {
		return err
	}
	s.table.Store(t)
	log.Debug().Str("path", path).Int("cities", len(t.Cities())).Msg("loaded prayer table")
	return nil
}

// fetchDays is the number of days read from the companion service: the
// notification window plus today's neighbour for the countdown rollover.
const fetchDays = notify.LookaheadDays + 1

// remote reports whether the table comes from the companion service.
func (s *session) remote() bool {
	return s.cfg.TableURL != "" && s.cfg.TablePath == ""
}

// fetchTable fetches the days of the city this run is about.
func (s *session) fetchTable(ctx context.Context) error {
	city := strings.TrimSpace(FlagCity)
	if city == "" {
		city = s.prefs.SelectedCity(ctx)
	}
	return s.fetchCity(ctx, city)
}

// fetchCity fetches city's next days and merges them into the table.
// Records of cities fetched earlier are kept.
func (s *session) fetchCity(ctx context.Context, city string) error {
	c, err := cache.New(s.cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		c = nil
	}
	client := api.NewClient(s.cfg.TableURL)

	var cities []string
	if c != nil {
		cities = c.LoadCities()
	}
	if cities == nil {
		if cities, err = client.FetchCities(ctx); err != nil {
			return err
		}
		if c != nil {
			if err := c.SaveCities(cities); err != nil {
				log.Warn().Err(err).Msg("failed to cache city list")
			}
		}
	}

	var dc api.DayCache
	if c != nil {
		dc = c
	}
	t, err := client.FetchTable(ctx, dc, city, cities, s.now(), fetchDays)
	if err != nil {
		return err
	}
	s.table.Merge(t)
	log.Debug().Str("city", city).Int("days", len(t.Dates(city))).Msg("fetched prayer times")
	return nil
}

// ensureCity fetches city when the table comes from the companion service
// and has no record for it today. Local tables are complete already.
func (s *session) ensureCity(ctx context.Context, city string) error {
	if !s.remote() {
		return nil
	}
	if _, ok := s.table.Lookup(city, prayer.DateKey(s.now())); ok {
		return nil
	}
	return s.fetchCity(ctx, city)
}

// liveTable is a swappable *timetable.Table. serve replaces it on refresh
// while handlers and the scheduler keep reading.
type liveTable struct {
	mu sync.Mutex
	p  atomic.Pointer[timetable.Table]
}

func (l *liveTable) Store(t *timetable.Table) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.Store(t)
}

// Merge folds t into the current table.
func (l *liveTable) Merge(t *timetable.Table) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur := l.p.Load(); cur != nil {
		t = cur.Merge(t)
	}
	l.p.Store(t)
}

func (l *liveTable) load() *timetable.Table {
	if t := l.p.Load(); t != nil {
		return t
	}
	return timetable.New(nil)
}

func (l *liveTable) Lookup(city, date string) (prayer.Record, bool) {
	return l.load().Lookup(city, date)
}

func (l *liveTable) Day(city, date string) (timetable.Day, error) {
	return l.load().Day(city, date)
}

func (l *liveTable) HasCity(city string) bool { return l.load().HasCity(city) }

func (l *liveTable) Cities() []string { return l.load().Cities() }

// printJSON writes v indented.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
