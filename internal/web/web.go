package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"menucal/internal/config"
	"menucal/internal/export"
	appLog "menucal/internal/log"
	"menucal/internal/menu"
	"menucal/internal/scrape"
	"menucal/internal/store"
)

// Server exposes the menu hierarchy over HTTP: week/day/month queries,
// an ICS download, and a manual refresh trigger.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	runner *scrape.Runner
	loc    *time.Location
	router *mux.Router

	// Short-TTL cache of the flattened week list so query endpoints do
	// not re-read every snapshot file per request.
	weeksMu    sync.RWMutex
	weeksCache *weeksCache
}

type weeksCache struct {
	weeks     []menu.WeeklyMenu
	updatedAt time.Time
}

const weeksCacheTTL = 30 * time.Second

// NewServer constructs a Server. loc is the school's timezone, used to
// default the reference date when a query omits one.
func NewServer(cfg *config.Config, st *store.Store, runner *scrape.Runner, loc *time.Location) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
		loc:    loc,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the whole middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	// The district frontend calls this API from the browser.
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(h)
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/menus/week", s.handleWeek).Methods(http.MethodGet)
	s.router.HandleFunc("/api/menus/day", s.handleDay).Methods(http.MethodGet)
	s.router.HandleFunc("/api/menus/month", s.handleMonth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/menus/ics", s.handleICS).Methods(http.MethodGet)
	s.router.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="menucal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// refDate resolves the reference date from the "date" query parameter,
// defaulting to today in the school's timezone.
func (s *Server) refDate(r *http.Request) (menu.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return menu.DateOf(time.Now().In(s.loc)), nil
	}
	return menu.ParseDate(raw)
}

// loadWeeks returns the flattened week list, cached briefly.
func (s *Server) loadWeeks() ([]menu.WeeklyMenu, error) {
	now := time.Now()

	s.weeksMu.RLock()
	wc := s.weeksCache
	s.weeksMu.RUnlock()
	if wc != nil && now.Sub(wc.updatedAt) < weeksCacheTTL {
		return wc.weeks, nil
	}

	weeks, err := s.store.Weeks()
	if err != nil {
		return nil, err
	}

	s.weeksMu.Lock()
	s.weeksCache = &weeksCache{weeks: weeks, updatedAt: time.Now()}
	s.weeksMu.Unlock()
	return weeks, nil
}

// invalidateWeeks drops the cache after a refresh run.
func (s *Server) invalidateWeeks() {
	s.weeksMu.Lock()
	s.weeksCache = nil
	s.weeksMu.Unlock()
}

// handleWeek resolves the week applying to a date. Weekend dates roll
// forward to the following week; a miss is a 404, the caller's normal
// "no data yet" state.
//
// GET /api/menus/week?date=YYYY-MM-DD
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	date, err := s.refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	weeks, err := s.loadWeeks()
	if err != nil {
		appLog.Error("week query: load snapshots failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu data")
		return
	}

	week, ok := menu.WeekFor(weeks, date)
	if !ok {
		writeError(w, http.StatusNotFound, "no menu data for the requested week")
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// dayResponse is the JSON shape for /api/menus/day.
type dayResponse struct {
	Date  menu.Date     `json:"date"`
	Meals menu.DayMeals `json:"meals"`
}

// handleDay returns one weekday's meals partitioned by meal type.
// Saturday and Sunday are outside the day-level contract.
//
// GET /api/menus/day?date=YYYY-MM-DD
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date, err := s.refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		writeError(w, http.StatusBadRequest, "day-level lookups cover Monday through Friday only")
		return
	}

	weeks, err := s.loadWeeks()
	if err != nil {
		appLog.Error("day query: load snapshots failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu data")
		return
	}

	week, ok := menu.WeekFor(weeks, date)
	if !ok {
		writeError(w, http.StatusNotFound, "no menu data for the requested week")
		return
	}

	meals, err := week.MealsOn(date.Weekday())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{Date: date, Meals: meals})
}

// handleMonth returns a stored monthly snapshot.
//
// GET /api/menus/month?year=2024&month=1
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	monthNum, err := strconv.Atoi(q.Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "invalid month; expected 1-12")
		return
	}

	monthly, err := s.store.LoadMonthly(year, time.Month(monthNum))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no menu data for the requested month")
			return
		}
		appLog.Error("month query: load snapshot failed", err, "year", year, "month", monthNum)
		writeError(w, http.StatusInternalServerError, "failed to load menu data")
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

// handleICS serves the resolved week as an iCalendar download.
//
// GET /api/menus/ics?date=YYYY-MM-DD
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	date, err := s.refDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	weeks, err := s.loadWeeks()
	if err != nil {
		appLog.Error("ics query: load snapshots failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu data")
		return
	}

	week, ok := menu.WeekFor(weeks, date)
	if !ok {
		writeError(w, http.StatusNotFound, "no menu data for the requested week")
		return
	}

	cal := export.WeeklyCalendar(week, "School Menus "+week.StartDate.String())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="menus-`+week.StartDate.String()+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal.Serialize()))
}

// refreshResponse is the JSON shape for /api/refresh.
type refreshResponse struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	WeekCount int `json:"week_count"`
	DayCount  int `json:"day_count"`
}

// handleRefresh triggers a scrape run for the current date.
//
// POST /api/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	monthly, err := s.runner.Run(ctx, time.Now().In(s.loc))
	if err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusBadGateway, "scrape run failed")
		return
	}
	s.invalidateWeeks()

	days := 0
	for _, week := range monthly.Weeks {
		days += len(week.Days)
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Year:      monthly.Year,
		Month:     int(monthly.Month),
		WeekCount: len(monthly.Weeks),
		DayCount:  days,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
