// Package server exposes the prayer table and the notification settings
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/namaz/internal/api"
	"github.com/smokyabdulrahman/namaz/internal/logging"
	"github.com/smokyabdulrahman/namaz/internal/notify"
	"github.com/smokyabdulrahman/namaz/internal/prayer"
	"github.com/smokyabdulrahman/namaz/internal/prefs"
	"github.com/smokyabdulrahman/namaz/internal/timetable"
)

// Table is the read side of the prayer table.
type Table interface {
	notify.Table
	Day(city, date string) (timetable.Day, error)
	Cities() []string
}

// Outbox is the pending-alert view and test hook of a notification service.
type Outbox interface {
	Pending() []notify.Alert
	SendTest(ctx context.Context) error
}

// Deps wires the server.
type Deps struct {
	Table     Table
	Prefs     *prefs.Preferences
	Scheduler *notify.Scheduler
	Outbox    Outbox
	// EnsureCity, when set, is called before a city's records are read so
	// a partial table can load them.
	EnsureCity func(ctx context.Context, city string) error
	// Now defaults to time.Now; Location converts it to the local zone
	// the table is expressed in.
	Now      func() time.Time
	Location *time.Location
}

type controller struct {
	Deps
}

func (c *controller) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now()
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return t
}

func (c *controller) ensure(ctx context.Context, city string) {
	if c.EnsureCity == nil {
		return
	}
	if err := c.EnsureCity(ctx, city); err != nil {
		log.Warn().Err(err).Str("city", city).Msg("failed to load prayer times")
	}
}

// NewRouter builds the gin engine.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	ctl := &controller{Deps: deps}

	r.GET("/healthz", ResolveEndpoint(ctl.health))
	r.GET("/times", ResolveEndpoint(ctl.times))
	r.GET("/cities", ResolveEndpoint(ctl.cities))
	r.GET("/snapshot", ResolveEndpoint(ctl.snapshot))

	r.GET("/preferences", ResolveEndpoint(ctl.preferences))
	r.PUT("/preferences/city", ResolveEndpoint(ctl.setCity))

	r.PUT("/notifications", ResolveEndpoint(ctl.setNotifications))
	r.PUT("/notifications/:prayer", ResolveEndpoint(ctl.setPrayer))
	r.GET("/notifications/scheduled", ResolveEndpoint(ctl.scheduled))
	r.POST("/notifications/test", ResolveEndpoint(ctl.sendTest))

	return r
}

// GET /healthz
func (c *controller) health(ctx *gin.Context) (any, *Error) {
	return gin.H{"status": "ok"}, nil
}

// GET /times?city=&date=
func (c *controller) times(ctx *gin.Context) (any, *Error) {
	city := ctx.Query("city")
	date := ctx.Query("date")
	if city == "" || date == "" {
		return nil, badRequest(api.MsgMissingParams)
	}
	if c.Table.HasCity(city) {
		c.ensure(ctx.Request.Context(), city)
	}

	day, err := c.Table.Day(city, date)
	switch {
	case err == nil:
		return day, nil
	case errors.Is(err, timetable.ErrCityNotFound):
		return nil, notFound(api.MsgCityNotFound)
	case errors.Is(err, timetable.ErrDateNotFound):
		return nil, notFound(api.MsgDateNotFound)
	default:
		return nil, internal(err)
	}
}

// GET /cities
func (c *controller) cities(ctx *gin.Context) (any, *Error) {
	return c.Table.Cities(), nil
}

// GET /snapshot?city=
func (c *controller) snapshot(ctx *gin.Context) (any, *Error) {
	city := ctx.Query("city")
	if city == "" {
		city = c.Prefs.SelectedCity(ctx.Request.Context())
	}
	if !c.Table.HasCity(city) {
		return nil, notFound(api.MsgCityNotFound)
	}
	c.ensure(ctx.Request.Context(), city)

	snap := prayer.ComputeSnapshot(city, c.now(), c.Table)
	resp := SnapshotResponse{
		Snapshot:        snap,
		DisplayProgress: snap.DisplayProgress(),
	}
	if snap.Previous != nil {
		resp.PreviousName = snap.Previous.Name()
	}
	if snap.Next != nil {
		resp.NextName = snap.Next.Name()
	}
	if snap.RemainingSeconds != nil {
		resp.Countdown = prayer.FormatCountdown(*snap.RemainingSeconds)
	}
	return resp, nil
}

// GET /preferences
func (c *controller) preferences(ctx *gin.Context) (any, *Error) {
	rctx := ctx.Request.Context()
	return PreferencesResponse{
		SelectedCity:         c.Prefs.SelectedCity(rctx),
		NotificationsEnabled: c.Prefs.NotificationsEnabled(rctx),
		PrayerSettings:       c.Prefs.Settings(rctx),
	}, nil
}

// PUT /preferences/city
func (c *controller) setCity(ctx *gin.Context) (any, *Error) {
	var req CityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, badRequest(err.Error())
	}

	alerts, err := c.Scheduler.SetCity(ctx.Request.Context(), strings.TrimSpace(req.City))
	if err != nil {
		if errors.Is(err, timetable.ErrCityNotFound) {
			return nil, notFound(api.MsgCityNotFound)
		}
		return nil, internal(err)
	}
	log.Info().Str("city", req.City).Msg("selected city changed")
	return scheduleResponse(alerts), nil
}

// PUT /notifications
func (c *controller) setNotifications(ctx *gin.Context) (any, *Error) {
	var req NotificationsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, badRequest(err.Error())
	}
	rctx := ctx.Request.Context()

	if !*req.Enabled {
		if err := c.Scheduler.Disable(rctx); err != nil {
			return nil, internal(err)
		}
		return scheduleResponse(nil), nil
	}

	alerts, err := c.Scheduler.Enable(rctx)
	if err != nil {
		if errors.Is(err, notify.ErrPermissionDenied) {
			return nil, &Error{Code: http.StatusForbidden, Message: err.Error()}
		}
		return nil, internal(err)
	}
	return scheduleResponse(alerts), nil
}

// PUT /notifications/:prayer
func (c *controller) setPrayer(ctx *gin.Context) (any, *Error) {
	k, err := prayer.ParseKey(ctx.Param("prayer"))
	if err != nil {
		return nil, badRequest(err.Error())
	}

	var req PrayerSettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, badRequest(err.Error())
	}
	if req.Enabled == nil && req.MinutesBefore == nil {
		return nil, badRequest("nothing to update: set enabled or minutesBefore")
	}

	rctx := ctx.Request.Context()
	var alerts []notify.Alert
	if req.Enabled != nil {
		if alerts, err = c.Scheduler.SetPrayerEnabled(rctx, k, *req.Enabled); err != nil {
			return nil, internal(err)
		}
	}
	if req.MinutesBefore != nil {
		if alerts, err = c.Scheduler.SetMinutesBefore(rctx, k, *req.MinutesBefore); err != nil {
			return nil, internal(err)
		}
	}

	return PrayerSettingResponse{
		Prayer:    k,
		Setting:   c.Prefs.Settings(rctx)[k],
		Scheduled: len(alerts),
	}, nil
}

// GET /notifications/scheduled
func (c *controller) scheduled(ctx *gin.Context) (any, *Error) {
	return scheduleResponse(c.Outbox.Pending()), nil
}

// POST /notifications/test
func (c *controller) sendTest(ctx *gin.Context) (any, *Error) {
	if err := c.Outbox.SendTest(ctx.Request.Context()); err != nil {
		if errors.Is(err, notify.ErrPermissionDenied) {
			return nil, &Error{Code: http.StatusForbidden, Message: err.Error()}
		}
		return nil, &Error{Code: http.StatusBadGateway, Message: err.Error()}
	}
	return gin.H{"sent": true}, nil
}

func scheduleResponse(alerts []notify.Alert) ScheduleResponse {
	if alerts == nil {
		alerts = []notify.Alert{}
	}
	return ScheduleResponse{Scheduled: len(alerts), Alerts: alerts}
}
