package server

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "shippingbytotal/internal/rate"
)

// Deps are the collaborators behind the HTTP API.
type Deps struct {
    Service  *rate.Service
    Rules    rate.RuleStore
    Methods  rate.MethodCatalog
    Settings rate.SettingsStore
    Gatherer prometheus.Gatherer
    Log      *zap.Logger
}

type Server struct {
    svc      *rate.Service
    rules    rate.RuleStore
    methods  rate.MethodCatalog
    settings rate.SettingsStore
    log      *zap.Logger
}

func New(d Deps) http.Handler {
    log := d.Log
    if log == nil {
        log = zap.NewNop()
    }
    gatherer := d.Gatherer
    if gatherer == nil {
        gatherer = prometheus.DefaultGatherer
    }
    s := &Server{
        svc:      d.Service,
        rules:    d.Rules,
        methods:  d.Methods,
        settings: d.Settings,
        log:      log.Named("http"),
    }

    r := chi.NewRouter()
    r.Use(requestIDMiddleware)
    r.Use(middleware.Recoverer)
    r.Use(requestLogger(s.log))
    r.Get("/healthz", s.handleHealth)
    r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
    r.Post("/shipping-options", s.handleShippingOptions)
    r.Get("/methods", s.handleListMethods)
    r.Route("/rates", func(r chi.Router) {
        r.Get("/", s.handleListRules)
        r.Post("/", s.handleCreateRule)
        r.Get("/{id}", s.handleGetRule)
        r.Put("/{id}", s.handleUpdateRule)
        r.Delete("/{id}", s.handleDeleteRule)
    })
    r.Get("/settings", s.handleGetSettings)
    r.Put("/settings", s.handlePutSettings)
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

// Shipping options
type OptionResponse struct {
    Name        string `json:"name"`
    Description string `json:"description"`
    Rate        string `json:"rate"`
}

type ShippingOptionsResponse struct {
    Options []OptionResponse `json:"options"`
}

func (s *Server) handleShippingOptions(w http.ResponseWriter, r *http.Request) {
    var req rate.Request
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    options, err := s.svc.GetShippingOptions(r.Context(), req)
    if err != nil {
        if errors.Is(err, rate.ErrInvalidRequest) {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
            return
        }
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "failed to resolve shipping options")
        return
    }
    res := ShippingOptionsResponse{Options: make([]OptionResponse, 0, len(options))}
    for _, o := range options {
        res.Options = append(res.Options, OptionResponse{
            Name:        o.Name,
            Description: o.Description,
            Rate:        o.Rate.StringFixed(2),
        })
    }
    writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
    var countryID int64
    if v := strings.TrimSpace(r.URL.Query().Get("country_id")); v != "" {
        id, err := strconv.ParseInt(v, 10, 64)
        if err != nil {
            writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid country_id")
            return
        }
        countryID = id
    }
    methods, err := s.methods.ListMethods(r.Context(), countryID)
    if err != nil {
        s.log.Error("list methods", zap.Error(err))
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
        return
    }
    if methods == nil {
        methods = []rate.Method{}
    }
    writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

// Rules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
    rules, err := s.rules.ListRules(r.Context())
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    if rules == nil {
        rules = []rate.Rule{}
    }
    writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
    id, ok := ruleID(w, r)
    if !ok {
        return
    }
    rule, err := s.rules.GetRule(r.Context(), id)
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
    var in rate.Rule
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    rule, err := rate.PrepareRule(in)
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    rule.ID = 0
    created, err := s.rules.InsertRule(r.Context(), rule)
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    s.log.Info("rule created", zap.Int64("rule_id", created.ID), zap.Int64("shipping_method_id", created.ShippingMethodID))
    writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
    id, ok := ruleID(w, r)
    if !ok {
        return
    }
    var in rate.Rule
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    rule, err := rate.PrepareRule(in)
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    rule.ID = id
    if err := s.rules.UpdateRule(r.Context(), rule); err != nil {
        s.writeStoreError(w, err)
        return
    }
    s.log.Info("rule updated", zap.Int64("rule_id", id))
    writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
    id, ok := ruleID(w, r)
    if !ok {
        return
    }
    if err := s.rules.DeleteRule(r.Context(), id); err != nil {
        s.writeStoreError(w, err)
        return
    }
    s.log.Info("rule deleted", zap.Int64("rule_id", id))
    w.WriteHeader(http.StatusNoContent)
}

// Settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
    settings, err := s.settings.LoadSettings(r.Context())
    if err != nil {
        s.writeStoreError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
    var in rate.Settings
    if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if err := s.settings.SaveSettings(r.Context(), in); err != nil {
        s.writeStoreError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, in)
}

func ruleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
    id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
    if err != nil || id <= 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid rule id")
        return 0, false
    }
    return id, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
    switch {
    case errors.Is(err, rate.ErrRuleNotFound):
        writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "rule not found")
    case errors.Is(err, rate.ErrInvalidRule):
        writeErrorJSON(w, http.StatusBadRequest, "invalid_rule", err.Error())
    default:
        s.log.Error("store error", zap.Error(err))
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
    }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    writeJSON(w, status, map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            next.ServeHTTP(ww, r)
            log.Info("request",
                zap.String("method", r.Method),
                zap.String("path", r.URL.Path),
                zap.Int("status", ww.Status()),
                zap.Int("bytes", ww.BytesWritten()),
                zap.Duration("elapsed", time.Since(start)),
                zap.String("request_id", w.Header().Get("X-Request-ID")),
            )
        })
    }
}
