package cache

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    redis "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "shippingbytotal/internal/rate"
)

const (
    rulesKey        = "shippingbytotal:rules"
    defaultRulesTTL = time.Minute
)

// RuleStore serves rule snapshots from Redis in front of another rate.RuleStore.
// Writes go to the inner store and then drop the cached snapshot.
// Redis errors are logged and the inner store answers instead.
type RuleStore struct {
    inner  rate.RuleStore
    client *redis.Client
    ttl    time.Duration
    log    *zap.Logger
}

// NewRuleStore wraps inner. With a nil client every call passes straight through.
func NewRuleStore(inner rate.RuleStore, client *redis.Client, ttl time.Duration, log *zap.Logger) *RuleStore {
    if ttl <= 0 {
        ttl = defaultRulesTTL
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &RuleStore{inner: inner, client: client, ttl: ttl, log: log.Named("rule_cache")}
}

func (c *RuleStore) ListRules(ctx context.Context) ([]rate.Rule, error) {
    if c.client == nil {
        return c.inner.ListRules(ctx)
    }

    data, err := c.client.Get(ctx, rulesKey).Bytes()
    switch {
    case err == nil:
        var rules []rate.Rule
        uerr := json.Unmarshal(data, &rules)
        if uerr == nil {
            return rules, nil
        }
        c.log.Warn("discarding unreadable rule snapshot", zap.Error(uerr))
    case !errors.Is(err, redis.Nil):
        c.log.Warn("read rule snapshot", zap.Error(err))
    }

    rules, err := c.inner.ListRules(ctx)
    if err != nil {
        return nil, err
    }
    if data, err := json.Marshal(rules); err == nil {
        if err := c.client.Set(ctx, rulesKey, data, c.ttl).Err(); err != nil {
            c.log.Warn("store rule snapshot", zap.Error(err))
        }
    }
    return rules, nil
}

func (c *RuleStore) GetRule(ctx context.Context, id int64) (rate.Rule, error) {
    return c.inner.GetRule(ctx, id)
}

func (c *RuleStore) InsertRule(ctx context.Context, r rate.Rule) (rate.Rule, error) {
    r, err := c.inner.InsertRule(ctx, r)
    if err != nil {
        return rate.Rule{}, err
    }
    c.invalidate(ctx)
    return r, nil
}

func (c *RuleStore) UpdateRule(ctx context.Context, r rate.Rule) error {
    if err := c.inner.UpdateRule(ctx, r); err != nil {
        return err
    }
    c.invalidate(ctx)
    return nil
}

func (c *RuleStore) DeleteRule(ctx context.Context, id int64) error {
    if err := c.inner.DeleteRule(ctx, id); err != nil {
        return err
    }
    c.invalidate(ctx)
    return nil
}

func (c *RuleStore) invalidate(ctx context.Context) {
    if c.client == nil {
        return
    }
    if err := c.client.Del(ctx, rulesKey).Err(); err != nil {
        c.log.Warn("invalidate rule snapshot", zap.Error(err))
    }
}
