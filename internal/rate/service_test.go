package rate_test

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "shippingbytotal/internal/rate"
    "shippingbytotal/internal/store"
)

type outcome struct {
    name                 string
    offered, unavailable int
}

type recorderStub struct {
    seen []outcome
}

func (r *recorderStub) ObserveResolution(name string, _ time.Duration, offered, unavailable int) {
    r.seen = append(r.seen, outcome{name, offered, unavailable})
}

type failingRules struct{ rate.RuleStore }

func (failingRules) ListRules(context.Context) ([]rate.Rule, error) {
    return nil, errors.New("connection refused")
}

func newMemory(t *testing.T) *store.Memory {
    t.Helper()
    mem := store.NewMemory()
    mem.AddMethod(rate.Method{ID: 1, Name: "Ground"})
    mem.AddMethod(rate.Method{ID: 2, Name: "Express", DisplayOrder: 1})
    _, err := mem.InsertRule(context.Background(), rate.Rule{
        ShippingMethodID: 1,
        StoreID:          3,
        To:               decimal.NewFromInt(100),
        ChargeAmount:     decimal.NewFromInt(4),
    })
    require.NoError(t, err)
    _, err = mem.InsertRule(context.Background(), rate.Rule{
        ShippingMethodID: 1,
        To:               decimal.NewFromInt(100),
        ChargeAmount:     decimal.NewFromInt(9),
    })
    require.NoError(t, err)
    require.NoError(t, mem.SaveSettings(context.Background(), rate.Settings{LimitMethodsToConfiguredRules: true}))
    return mem
}

func request() rate.Request {
    return rate.Request{
        Items:   []rate.Item{{Subtotal: decimal.NewFromInt(20)}},
        Address: &rate.Address{CountryID: 1},
    }
}

func TestService_DefaultStoreFallback(t *testing.T) {
    mem := newMemory(t)
    rec := &recorderStub{}
    svc := rate.NewService(rate.ServiceParam{
        Rules:          mem,
        Methods:        mem,
        Settings:       mem,
        Matcher:        rate.NewMatcherByName(rate.PolicyScoped),
        DefaultStoreID: 3,
        Recorder:       rec,
    })

    opts, err := svc.GetShippingOptions(context.Background(), request())
    require.NoError(t, err)
    require.Len(t, opts, 1)
    assert.Equal(t, "4", opts[0].Rate.String())
    assert.Equal(t, []outcome{{rate.OutcomeOK, 1, 1}}, rec.seen)

    req := request()
    req.StoreID = 8
    opts, err = svc.GetShippingOptions(context.Background(), req)
    require.NoError(t, err)
    require.Len(t, opts, 1)
    assert.Equal(t, "9", opts[0].Rate.String())
}

func TestService_InvalidRequest(t *testing.T) {
    mem := newMemory(t)
    rec := &recorderStub{}
    svc := rate.NewService(rate.ServiceParam{Rules: mem, Methods: mem, Settings: mem, Recorder: rec})

    _, err := svc.GetShippingOptions(context.Background(), rate.Request{Address: &rate.Address{}})
    assert.True(t, errors.Is(err, rate.ErrInvalidRequest))
    assert.Equal(t, []outcome{{rate.OutcomeInvalid, 0, 0}}, rec.seen)
}

func TestService_StoreError(t *testing.T) {
    mem := newMemory(t)
    rec := &recorderStub{}
    svc := rate.NewService(rate.ServiceParam{Rules: failingRules{mem}, Methods: mem, Settings: mem, Recorder: rec})

    _, err := svc.GetShippingOptions(context.Background(), request())
    require.Error(t, err)
    assert.False(t, errors.Is(err, rate.ErrInvalidRequest))
    assert.Equal(t, []outcome{{rate.OutcomeError, 0, 0}}, rec.seen)
}
