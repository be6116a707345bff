package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

// companion fakes the /times and /cities endpoints of a companion server.
func companion(t *testing.T, days map[string]map[string]map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/times", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		city, date := r.URL.Query().Get("city"), r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		if city == "" || date == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: MsgMissingParams})
			return
		}
		cityDays, ok := days[city]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: MsgCityNotFound})
			return
		}
		day, ok := cityDays[date]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: MsgDateNotFound})
			return
		}
		json.NewEncoder(w).Encode(day)
	})
	mux.HandleFunc("/cities", func(w http.ResponseWriter, r *http.Request) {
		var cities []string
		for c := range days {
			cities = append(cities, c)
		}
		json.NewEncoder(w).Encode(cities)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sampleDays() map[string]map[string]map[string]string {
	return map[string]map[string]map[string]string{
		"София": {
			"2025-03-06": {"Ден": "6", "Зора": "05:16", "Изгрев": "06:52", "Обяд": "12:22", "Следобяд": "15:29", "Залез": "17:53", "Нощ": "19:22"},
			"2025-03-07": {"Зора": "05:14", "Изгрев": "06:50", "Обяд": "12:22", "Следобяд": "15:30", "Залез": "17:54", "Нощ": "19:23"},
		},
	}
}

// memCache is an in-memory DayCache.
type memCache map[string]timetable.Day

func (m memCache) LoadDay(city, date string) (timetable.Day, bool) {
	d, ok := m[city+"|"+date]
	return d, ok
}

func (m memCache) SaveDay(city, date string, day timetable.Day) error {
	m[city+"|"+date] = day
	return nil
}

func TestNewClient_TrimsSlash(t *testing.T) {
	c := NewClient("http://localhost:3000/")
	if c.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
}

func TestFetchDay_Success(t *testing.T) {
	srv := companion(t, sampleDays(), nil)
	c := NewClient(srv.URL)

	day, err := c.FetchDay(context.Background(), "София", "2025-03-06")
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if got, _ := day.Time(prayer.Sunset); got != "17:53" {
		t.Errorf("Sunset = %q, want 17:53", got)
	}
}

func TestFetchDay_NotFound(t *testing.T) {
	srv := companion(t, sampleDays(), nil)
	c := NewClient(srv.URL)
	ctx := context.Background()

	if _, err := c.FetchDay(ctx, "Пловдив", "2025-03-06"); !errors.Is(err, timetable.ErrCityNotFound) {
		t.Errorf("unknown city err = %v", err)
	}
	if _, err := c.FetchDay(ctx, "София", "2025-12-31"); !errors.Is(err, timetable.ErrDateNotFound) {
		t.Errorf("unknown date err = %v", err)
	}
}

func TestFetchDay_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchDay(context.Background(), "София", "2025-03-06")
	if err == nil {
		t.Fatal("expected error for 500")
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain text body", http.StatusBadGateway, "upstream down\n", "API returned status 502: upstream down"},
		{"error object", http.StatusBadRequest, `{"error":"Missing city or date parameter"}`, "API returned status 400: Missing city or date parameter"},
		{"truncated json", http.StatusInternalServerError, `{"error":`, `API returned status 500: {"error":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusError(tt.status, []byte(tt.body)).Error(); got != tt.want {
				t.Errorf("statusError = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchDay_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{nope"))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchDay(context.Background(), "София", "2025-03-06"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchCities(t *testing.T) {
	srv := companion(t, sampleDays(), nil)

	cities, err := NewClient(srv.URL).FetchCities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cities) != 1 || cities[0] != "София" {
		t.Errorf("FetchCities() = %v", cities)
	}
}

func TestFetchTable(t *testing.T) {
	var hits atomic.Int32
	srv := companion(t, sampleDays(), &hits)
	c := NewClient(srv.URL)
	cache := memCache{}
	from := time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC)

	tbl, err := c.FetchTable(context.Background(), cache, "София", []string{"Варна"}, from, 4)
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if got := tbl.Dates("София"); len(got) != 2 {
		t.Errorf("Dates = %v, want the two known days", got)
	}
	if !tbl.HasCity("Варна") {
		t.Error("known cities should be registered")
	}
	if hits.Load() != 4 {
		t.Errorf("requests = %d, want 4", hits.Load())
	}

	// Second build is served from the cache for the days that exist.
	if _, err := c.FetchTable(context.Background(), cache, "София", nil, from, 4); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 6 {
		t.Errorf("requests = %d, want 6 (only the two missing days refetched)", hits.Load())
	}
}

func TestFetchTable_UnknownCity(t *testing.T) {
	srv := companion(t, sampleDays(), nil)
	from := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)

	_, err := NewClient(srv.URL).FetchTable(context.Background(), nil, "Пловдив", nil, from, 2)
	if !errors.Is(err, timetable.ErrCityNotFound) {
		t.Errorf("err = %v, want ErrCityNotFound", err)
	}
}
