package store

import (
    "context"
    "errors"
    "fmt"
    "strconv"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgconn"
    "github.com/jackc/pgx/v5/pgxpool"

    "shippingbytotal/internal/rate"
)

// SettingLimitMethodsToCreated is the settings row backing Settings.LimitMethodsToConfiguredRules.
const SettingLimitMethodsToCreated = "shippingbytotalsettings.limitmethodstocreated"

const ruleColumns = `id, shipping_method_id, store_id, warehouse_id, country_id, state_province_id,
    COALESCE(zip_postal_code, ''), from_total, to_total, use_percentage,
    charge_percentage, charge_amount, display_order`

// Postgres implements the rule store, method catalog and settings store on pgx.
type Postgres struct {
    db *pgxpool.Pool
}

// NewPostgres returns a store backed by the db pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
    return &Postgres{db: db}
}

// ListRules returns every rule in admin list order.
func (p *Postgres) ListRules(ctx context.Context) ([]rate.Rule, error) {
    rows, err := p.db.Query(ctx, `SELECT `+ruleColumns+`
        FROM shipping_by_total_rules
        ORDER BY country_id, shipping_method_id, from_total, id`)
    if err != nil {
        return nil, fmt.Errorf("list rules: %w", err)
    }
    defer rows.Close()

    var rules []rate.Rule
    for rows.Next() {
        r, err := scanRule(rows)
        if err != nil {
            return nil, fmt.Errorf("scan rule: %w", err)
        }
        rules = append(rules, r)
    }
    return rules, rows.Err()
}

// GetRule returns the rule with id or rate.ErrRuleNotFound.
func (p *Postgres) GetRule(ctx context.Context, id int64) (rate.Rule, error) {
    if id == 0 {
        return rate.Rule{}, rate.ErrRuleNotFound
    }
    row := p.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM shipping_by_total_rules WHERE id = $1`, id)
    r, err := scanRule(row)
    if err != nil {
        if errors.Is(err, pgx.ErrNoRows) {
            return rate.Rule{}, rate.ErrRuleNotFound
        }
        return rate.Rule{}, fmt.Errorf("get rule %d: %w", id, err)
    }
    return r, nil
}

// InsertRule inserts r and returns it with the assigned id.
func (p *Postgres) InsertRule(ctx context.Context, r rate.Rule) (rate.Rule, error) {
    err := p.db.QueryRow(ctx, `
        INSERT INTO shipping_by_total_rules (
            shipping_method_id, store_id, warehouse_id, country_id, state_province_id,
            zip_postal_code, from_total, to_total, use_percentage,
            charge_percentage, charge_amount, display_order
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`,
        r.ShippingMethodID, r.StoreID, r.WarehouseID, r.CountryID, r.StateProvinceID,
        nullIfEmpty(r.ZipPostalCode), r.From, r.To, r.UsePercentage,
        r.ChargePercentage, r.ChargeAmount, r.DisplayOrder,
    ).Scan(&r.ID)
    if err != nil {
        return rate.Rule{}, mapWriteError("insert rule", err)
    }
    return r, nil
}

// UpdateRule overwrites the rule with r.ID.
func (p *Postgres) UpdateRule(ctx context.Context, r rate.Rule) error {
    tag, err := p.db.Exec(ctx, `
        UPDATE shipping_by_total_rules SET
            shipping_method_id = $2, store_id = $3, warehouse_id = $4, country_id = $5,
            state_province_id = $6, zip_postal_code = $7, from_total = $8, to_total = $9,
            use_percentage = $10, charge_percentage = $11, charge_amount = $12, display_order = $13
        WHERE id = $1`,
        r.ID, r.ShippingMethodID, r.StoreID, r.WarehouseID, r.CountryID,
        r.StateProvinceID, nullIfEmpty(r.ZipPostalCode), r.From, r.To,
        r.UsePercentage, r.ChargePercentage, r.ChargeAmount, r.DisplayOrder,
    )
    if err != nil {
        return mapWriteError("update rule", err)
    }
    if tag.RowsAffected() == 0 {
        return rate.ErrRuleNotFound
    }
    return nil
}

// DeleteRule removes the rule with id.
func (p *Postgres) DeleteRule(ctx context.Context, id int64) error {
    tag, err := p.db.Exec(ctx, `DELETE FROM shipping_by_total_rules WHERE id = $1`, id)
    if err != nil {
        return fmt.Errorf("delete rule %d: %w", id, err)
    }
    if tag.RowsAffected() == 0 {
        return rate.ErrRuleNotFound
    }
    return nil
}

// ListMethods returns the methods not restricted for countryID, in display order.
func (p *Postgres) ListMethods(ctx context.Context, countryID int64) ([]rate.Method, error) {
    rows, err := p.db.Query(ctx, `
        SELECT m.id, m.name, COALESCE(m.description, ''), m.display_order
        FROM shipping_methods m
        WHERE $1::bigint = 0 OR NOT EXISTS (
            SELECT 1 FROM shipping_method_restrictions r
            WHERE r.shipping_method_id = m.id AND r.country_id = $1::bigint
        )
        ORDER BY m.display_order, m.id`, countryID)
    if err != nil {
        return nil, fmt.Errorf("list methods: %w", err)
    }
    defer rows.Close()

    var methods []rate.Method
    for rows.Next() {
        var m rate.Method
        if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.DisplayOrder); err != nil {
            return nil, fmt.Errorf("scan method: %w", err)
        }
        methods = append(methods, m)
    }
    return methods, rows.Err()
}

// LoadSettings reads the settings, defaulting missing keys.
func (p *Postgres) LoadSettings(ctx context.Context) (rate.Settings, error) {
    var raw string
    err := p.db.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, SettingLimitMethodsToCreated).Scan(&raw)
    if err != nil {
        if errors.Is(err, pgx.ErrNoRows) {
            return rate.Settings{}, nil
        }
        return rate.Settings{}, fmt.Errorf("load settings: %w", err)
    }
    limit, err := strconv.ParseBool(raw)
    if err != nil {
        return rate.Settings{}, fmt.Errorf("setting %s: %w", SettingLimitMethodsToCreated, err)
    }
    return rate.Settings{LimitMethodsToConfiguredRules: limit}, nil
}

// SaveSettings upserts the settings.
func (p *Postgres) SaveSettings(ctx context.Context, s rate.Settings) error {
    _, err := p.db.Exec(ctx, `
        INSERT INTO settings (name, value) VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`,
        SettingLimitMethodsToCreated, strconv.FormatBool(s.LimitMethodsToConfiguredRules))
    if err != nil {
        return fmt.Errorf("save settings: %w", err)
    }
    return nil
}

func scanRule(row pgx.Row) (rate.Rule, error) {
    var r rate.Rule
    err := row.Scan(
        &r.ID, &r.ShippingMethodID, &r.StoreID, &r.WarehouseID, &r.CountryID, &r.StateProvinceID,
        &r.ZipPostalCode, &r.From, &r.To, &r.UsePercentage,
        &r.ChargePercentage, &r.ChargeAmount, &r.DisplayOrder,
    )
    return r, err
}

// mapWriteError turns a missing shipping method into rate.ErrInvalidRule.
func mapWriteError(op string, err error) error {
    var pgErr *pgconn.PgError
    if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
        return fmt.Errorf("%w: unknown shipping method", rate.ErrInvalidRule)
    }
    return fmt.Errorf("%s: %w", op, err)
}

func nullIfEmpty(s string) *string {
    if s == "" {
        return nil
    }
    return &s
}
