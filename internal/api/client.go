// Package api talks to a prayer-times companion server exposing
// GET /times?city=&date= and GET /cities.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

// Client communicates with a companion server.
type Client struct {
	httpClient *http.Client
	// BaseURL is the server root, e.g. "http://localhost:3000".
	BaseURL string
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchDay fetches the record of city on date (YYYY-MM-DD). A 404 maps to
// timetable.ErrCityNotFound or timetable.ErrDateNotFound.
func (c *Client) FetchDay(ctx context.Context, city, date string) (timetable.Day, error) {
	params := url.Values{}
	params.Set("city", city)
	params.Set("date", date)

	var day timetable.Day
	if err := c.doRequest(ctx, "/times", params, &day); err != nil {
		return timetable.Day{}, err
	}
	return day, nil
}

// FetchCities fetches the list of known cities.
func (c *Client) FetchCities(ctx context.Context) ([]string, error) {
	var cities []string
	if err := c.doRequest(ctx, "/cities", nil, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return statusError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}

// statusError maps a non-200 response to an error, using the sentinel
// errors of the timetable package for the known 404 bodies.
func statusError(status int, body []byte) error {
	// A body that is not an error object falls back to the raw text below.
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		e = ErrorResponse{}
	}

	if status == http.StatusNotFound {
		switch e.Error {
		case MsgCityNotFound:
			return timetable.ErrCityNotFound
		case MsgDateNotFound:
			return timetable.ErrDateNotFound
		}
	}
	if e.Error != "" {
		return fmt.Errorf("API returned status %d: %s", status, e.Error)
	}
	return fmt.Errorf("API returned status %d: %s", status, strings.TrimSpace(string(body)))
}

// DayCache stores fetched day records between runs.
type DayCache interface {
	LoadDay(city, date string) (timetable.Day, bool)
	SaveDay(city, date string, day timetable.Day) error
}

// FetchTable builds a table holding city's records for days consecutive
// calendar days starting at from. Days the server does not know are left
// out; cached records are used without a request when cache is non-nil.
// Every name in known is registered without records so the table still
// reports those cities as present.
func (c *Client) FetchTable(ctx context.Context, cache DayCache, city string, known []string, from time.Time, days int) (*timetable.Table, error) {
	records := make(map[string]timetable.Day, days)
	y, m, d := from.Date()

	for i := 0; i < days; i++ {
		date := prayer.DateKey(time.Date(y, m, d+i, 0, 0, 0, 0, from.Location()))

		if cache != nil {
			if day, ok := cache.LoadDay(city, date); ok {
				records[date] = day
				continue
			}
		}

		day, err := c.FetchDay(ctx, city, date)
		switch {
		case err == nil:
		case errors.Is(err, timetable.ErrDateNotFound):
			log.Debug().Str("city", city).Str("date", date).Msg("server has no record for date")
			continue
		default:
			return nil, err
		}

		records[date] = day
		if cache != nil {
			if err := cache.SaveDay(city, date, day); err != nil {
				log.Warn().Err(err).Msg("failed to cache day record")
			}
		}
	}

	data := make(map[string]map[string]timetable.Day, len(known)+1)
	for _, name := range known {
		data[name] = map[string]timetable.Day{}
	}
	data[city] = records
	return timetable.New(data), nil
}
