package rate

import (
    "errors"

    "github.com/shopspring/decimal"
)

// ErrInvalidRequest is returned when a request has no items or no shipping address.
var ErrInvalidRequest = errors.New("invalid request")

// Rule is one configured shipping-by-total rate record.
// A zero scope id (or an empty ZIP pattern) matches any value.
type Rule struct {
    ID               int64           `json:"id"`
    ShippingMethodID int64           `json:"shipping_method_id"`
    StoreID          int64           `json:"store_id"`
    WarehouseID      int64           `json:"warehouse_id"`
    CountryID        int64           `json:"country_id"`
    StateProvinceID  int64           `json:"state_province_id"`
    ZipPostalCode    string          `json:"zip_postal_code"`
    From             decimal.Decimal `json:"from"`
    To               decimal.Decimal `json:"to"`
    UsePercentage    bool            `json:"use_percentage"`
    ChargePercentage decimal.Decimal `json:"charge_percentage"`
    ChargeAmount     decimal.Decimal `json:"charge_amount"`
    DisplayOrder     int             `json:"display_order"`
}

// Covers reports whether subtotal falls inside the inclusive [From, To] range.
// A rule with From > To never covers anything.
func (r Rule) Covers(subtotal decimal.Decimal) bool {
    return subtotal.GreaterThanOrEqual(r.From) && subtotal.LessThanOrEqual(r.To)
}

// Method is a candidate shipping method supplied by the catalog.
type Method struct {
    ID           int64  `json:"id"`
    Name         string `json:"name"`
    Description  string `json:"description"`
    DisplayOrder int    `json:"display_order"`
}

// Item is one shippable line of the order.
type Item struct {
    Subtotal     decimal.Decimal `json:"subtotal"`
    FreeShipping bool            `json:"free_shipping"`
    ShipDisabled bool            `json:"ship_disabled"`
}

// Address is the destination of the shipment.
type Address struct {
    CountryID       int64  `json:"country_id"`
    StateProvinceID int64  `json:"state_province_id"`
    ZipPostalCode   string `json:"zip_postal_code"`
}

// Request asks for the shipping options available to an order.
type Request struct {
    StoreID     int64    `json:"store_id"`
    WarehouseID int64    `json:"warehouse_id"`
    Items       []Item   `json:"items"`
    Address     *Address `json:"address"`
}

// Query is the context a single shipping method is priced against.
type Query struct {
    Subtotal         decimal.Decimal
    ShippingMethodID int64
    StoreID          int64
    WarehouseID      int64
    CountryID        int64
    StateProvinceID  int64
    ZipPostalCode    string
}

// Settings controls how methods without a matching rule are treated.
type Settings struct {
    LimitMethodsToConfiguredRules bool `json:"limit_methods_to_configured_rules"`
}

// Option is one available shipping method with its price.
type Option struct {
    Name        string          `json:"name"`
    Description string          `json:"description"`
    Rate        decimal.Decimal `json:"rate"`
}
