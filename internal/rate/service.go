package rate

import (
    "context"
    "errors"
    "time"

    "go.uber.org/zap"
)

// RuleStore holds the configured rules. Resolution only calls ListRules;
// the write methods serve the administrative API.
type RuleStore interface {
    ListRules(ctx context.Context) ([]Rule, error)
    GetRule(ctx context.Context, id int64) (Rule, error)
    InsertRule(ctx context.Context, r Rule) (Rule, error)
    UpdateRule(ctx context.Context, r Rule) error
    DeleteRule(ctx context.Context, id int64) error
}

// MethodCatalog supplies the shipping methods offered to a destination country.
type MethodCatalog interface {
    ListMethods(ctx context.Context, countryID int64) ([]Method, error)
}

// SettingsStore loads and persists the engine settings.
type SettingsStore interface {
    LoadSettings(ctx context.Context) (Settings, error)
    SaveSettings(ctx context.Context, s Settings) error
}

// Recorder observes the outcome of each resolution.
type Recorder interface {
    ObserveResolution(outcome string, elapsed time.Duration, offered, unavailable int)
}

// Resolution outcomes reported to a Recorder.
const (
    OutcomeOK      = "ok"
    OutcomeInvalid = "invalid_request"
    OutcomeError   = "error"
)

// Service loads a snapshot of rules, methods and settings and resolves options against it.
type Service struct {
    rules          RuleStore
    methods        MethodCatalog
    settings       SettingsStore
    resolver       *Resolver
    defaultStoreID int64
    recorder       Recorder
    log            *zap.Logger
}

// ServiceParam groups the collaborators of a Service.
type ServiceParam struct {
    Rules          RuleStore
    Methods        MethodCatalog
    Settings       SettingsStore
    Matcher        *Matcher
    DefaultStoreID int64
    Recorder       Recorder
    Log            *zap.Logger
}

// NewService builds a Service; a nil Log discards output and a nil Matcher uses the country policy.
func NewService(p ServiceParam) *Service {
    log := p.Log
    if log == nil {
        log = zap.NewNop()
    }
    return &Service{
        rules:          p.Rules,
        methods:        p.Methods,
        settings:       p.Settings,
        resolver:       NewResolver(p.Matcher),
        defaultStoreID: p.DefaultStoreID,
        recorder:       p.Recorder,
        log:            log.Named("rate"),
    }
}

// GetShippingOptions resolves the available shipping options for req.
func (s *Service) GetShippingOptions(ctx context.Context, req Request) ([]Option, error) {
    start := time.Now()
    options, methods, err := s.getShippingOptions(ctx, req)
    elapsed := time.Since(start)

    switch {
    case errors.Is(err, ErrInvalidRequest):
        s.observe(OutcomeInvalid, elapsed, 0, 0)
        return nil, err
    case err != nil:
        s.observe(OutcomeError, elapsed, 0, 0)
        s.log.Error("resolve shipping options", zap.Error(err))
        return nil, err
    }
    s.observe(OutcomeOK, elapsed, len(options), methods-len(options))
    s.log.Debug("resolved shipping options",
        zap.Int64("store_id", req.StoreID),
        zap.Int64("country_id", req.Address.CountryID),
        zap.Int("methods", methods),
        zap.Int("options", len(options)),
        zap.Duration("elapsed", elapsed),
    )
    return options, nil
}

func (s *Service) getShippingOptions(ctx context.Context, req Request) ([]Option, int, error) {
    if err := Validate(req); err != nil {
        return nil, 0, err
    }
    if req.StoreID == 0 {
        req.StoreID = s.defaultStoreID
    }

    rules, err := s.rules.ListRules(ctx)
    if err != nil {
        return nil, 0, err
    }
    methods, err := s.methods.ListMethods(ctx, req.Address.CountryID)
    if err != nil {
        return nil, 0, err
    }
    settings, err := s.settings.LoadSettings(ctx)
    if err != nil {
        return nil, 0, err
    }

    options, err := s.resolver.ResolveOptions(rules, req, methods, settings)
    return options, len(methods), err
}

func (s *Service) observe(outcome string, elapsed time.Duration, offered, unavailable int) {
    if s.recorder == nil {
        return
    }
    s.recorder.ObserveResolution(outcome, elapsed, offered, unavailable)
}
