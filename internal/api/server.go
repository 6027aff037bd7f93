package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TankSentinel/internal/calculator"
	"TankSentinel/internal/metrics"
	"TankSentinel/internal/model"
	"TankSentinel/internal/pricing"
	"TankSentinel/internal/recorder"
	"TankSentinel/internal/strategy"
	"TankSentinel/internal/tank"
)

const maxBodyBytes = 1 << 20

// Server exposes the reading store, forecasts and the pricing calculator over HTTP.
type Server struct {
	tank     *tank.Manager
	recorder recorder.Recorder
	vatRate  float64
	now      func() time.Time
}

// NewServer creates an HTTP API server.
func NewServer(tm *tank.Manager, rec recorder.Recorder, vatRate float64) *Server {
	if vatRate <= 0 {
		vatRate = calculator.DefaultVATRate
	}
	return &Server{tank: tm, recorder: rec, vatRate: vatRate, now: time.Now}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/readings", s.getReadings)
		r.Put("/readings", s.replaceReadings)
		r.Delete("/readings", s.clearReadings)
		r.Put("/readings/{index}", s.setReading)
		r.Put("/delivery-days", s.setDeliveryDays)
		r.Get("/forecast", s.forecast)
		r.Post("/pricing/vat", s.vat)
		r.Post("/pricing/table", s.pricingTable)
	})
	return r
}

type readingDTO struct {
	Index   int      `json:"index"`
	Value   *float64 `json:"value"`
	Invalid bool     `json:"invalid,omitempty"`
}

type readingsResponse struct {
	Readings     []readingDTO `json:"readings"`
	Filled       int          `json:"filled"`
	DeliveryDays int          `json:"delivery_days"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type replaceRequest struct {
	Readings     []*float64 `json:"readings"`
	DeliveryDays *int       `json:"delivery_days"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type vatRequest struct {
	Quantity  float64  `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
	VATRate   *float64 `json:"vat_rate"`
}

type tableResponse struct {
	Rows   []model.ContractRow `json:"rows"`
	Totals model.VATBreakdown  `json:"totals"`
}

type healthResponse struct {
	Status           string `json:"status"`
	ForecastsStored  int    `json:"forecasts_stored"`
	LastUrgency      string `json:"last_urgency,omitempty"`
	HistoryAvailable bool   `json:"history_available"`
}

// health reports liveness plus a summary of the forecast history. A failing
// history query degrades the summary, not the status.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", HistoryAvailable: true}
	stats, err := s.recorder.Stats()
	if err != nil {
		log.Printf("[WARN] history stats: %v", err)
		resp.HistoryAvailable = false
	} else {
		resp.ForecastsStored = stats.Forecasts
		resp.LastUrgency = string(stats.LastUrgency)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getReadings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toReadingsResponse(s.tank.Snapshot()))
}

func (s *Server) replaceReadings(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	series, err := model.SeriesFromValues(req.Readings)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_reading", err.Error())
		return
	}
	if idx := series.FirstInvalid(); idx >= 0 {
		writeError(w, http.StatusBadRequest, "invalid_reading", "reading for day "+strconv.Itoa(idx)+" must be within 0..100")
		return
	}
	days := -1
	if req.DeliveryDays != nil {
		days = *req.DeliveryDays
	}
	if err := s.tank.Replace(series, days); err != nil {
		log.Printf("[ERROR] replace readings: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store readings")
		return
	}
	snap := s.tank.Snapshot()
	metrics.ObserveSeries(snap.Series)
	writeJSON(w, http.StatusOK, toReadingsResponse(snap))
}

func (s *Server) clearReadings(w http.ResponseWriter, _ *http.Request) {
	if err := s.tank.Clear(); err != nil {
		log.Printf("[ERROR] clear readings: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to clear readings")
		return
	}
	snap := s.tank.Snapshot()
	metrics.ObserveSeries(snap.Series)
	writeJSON(w, http.StatusOK, toReadingsResponse(snap))
}

func (s *Server) setReading(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_index", "day index must be an integer")
		return
	}
	var req valueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reading, err := s.tank.SetReading(index, req.Value)
	if errors.Is(err, tank.ErrIndexOutOfRange) {
		writeError(w, http.StatusBadRequest, "invalid_index", err.Error())
		return
	}
	if err != nil {
		log.Printf("[ERROR] set reading %d: %v", index, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store reading")
		return
	}

	metrics.ObserveReading(reading)
	if err := s.recorder.RecordReading(&recorder.ReadingEvent{
		Index: index, Raw: req.Value, Value: reading.Value,
		Set: reading.Set, Invalid: reading.Invalid, Source: "API",
	}); err != nil {
		log.Printf("[ERROR] record reading: %v", err)
	}

	snap := s.tank.Snapshot()
	metrics.ObserveSeries(snap.Series)
	status := http.StatusOK
	if reading.Invalid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toReadingsResponse(snap))
}

func (s *Server) setDeliveryDays(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := s.tank.SetDeliveryDays(req.Value); err != nil {
		log.Printf("[ERROR] set delivery days: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to store delivery days")
		return
	}
	writeJSON(w, http.StatusOK, toReadingsResponse(s.tank.Snapshot()))
}

func (s *Server) forecast(w http.ResponseWriter, _ *http.Request) {
	f, err := s.tank.Forecast(s.now())
	if err != nil {
		s.writeForecastError(w, err)
		return
	}
	metrics.ObserveForecast(f)
	if err := s.recorder.RecordForecast(&recorder.ForecastEvent{Forecast: f, Trigger: "API"}); err != nil {
		log.Printf("[ERROR] record forecast: %v", err)
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) writeForecastError(w http.ResponseWriter, err error) {
	var incomplete *strategy.IncompleteDataError
	var invalid *strategy.InvalidDataError
	metrics.ObserveForecastError(tank.ErrorKind(err))
	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":     "incomplete_data",
			"message":  err.Error(),
			"filled":   incomplete.Filled,
			"required": incomplete.Required,
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "invalid_data",
			"message": err.Error(),
			"index":   invalid.Index,
		})
	case errors.Is(err, strategy.ErrInvalidRate):
		writeError(w, http.StatusUnprocessableEntity, "invalid_rate", err.Error())
	default:
		log.Printf("[ERROR] forecast: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "forecast failed")
	}
}

func (s *Server) vat(w http.ResponseWriter, r *http.Request) {
	var req vatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate := s.vatRate
	if req.VATRate != nil {
		rate = *req.VATRate
	}
	res, err := calculator.CalculateVAT(req.Quantity, req.UnitPrice, rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// pricingTable imports a CSV contract table and returns totals as JSON, or the
// computed table as CSV when ?format=csv is set.
func (s *Server) pricingTable(w http.ResponseWriter, r *http.Request) {
	tbl, err := pricing.ImportCSV(io.LimitReader(r.Body, maxBodyBytes), s.vatRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := tbl.ExportCSV(w); err != nil {
			log.Printf("[ERROR] export csv: %v", err)
		}
		return
	}
	rows := tbl.Rows
	if rows == nil {
		rows = []model.ContractRow{}
	}
	writeJSON(w, http.StatusOK, tableResponse{Rows: rows, Totals: tbl.Totals()})
}

func toReadingsResponse(snap tank.Snapshot) readingsResponse {
	values := snap.Series.Values()
	out := readingsResponse{
		Readings:     make([]readingDTO, 0, model.HistoryDays),
		Filled:       snap.Series.Filled(),
		DeliveryDays: snap.DeliveryDays,
		UpdatedAt:    snap.UpdatedAt,
	}
	for i, r := range snap.Series {
		out.Readings = append(out.Readings, readingDTO{Index: i, Value: values[i], Invalid: r.Invalid})
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
