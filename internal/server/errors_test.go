package server

import (
    "bytes"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
)

// helper to parse standardized error
type stdError struct {
    Error struct {
        Code    string `json:"code"`
        Message string `json:"message"`
    } `json:"error"`
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, stdError) {
    t.Helper()
    req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v; body=%s", err, rr.Body.String())
    }
    return rr, e
}

func TestShippingOptions_InvalidJSON(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodPost, "/shipping-options", "{")
    if rr.Code != http.StatusBadRequest || e.Error.Code != "invalid_json" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
}

func TestShippingOptions_NoItems(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodPost, "/shipping-options", `{"items":[],"address":{"country_id":1}}`)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rr.Code)
    }
    if e.Error.Code != "invalid_request" || e.Error.Message != "invalid request: no shipment items" {
        t.Fatalf("unexpected error: %+v", e)
    }
}

func TestShippingOptions_NoAddress(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodPost, "/shipping-options", `{"items":[{"subtotal":"5"}]}`)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rr.Code)
    }
    if e.Error.Code != "invalid_request" || e.Error.Message != "invalid request: shipping address is not set" {
        t.Fatalf("unexpected error: %+v", e)
    }
}

func TestCreateRule_Invalid(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodPost, "/rates", `{"shipping_method_id":0,"from":"0","to":"1"}`)
    if rr.Code != http.StatusBadRequest || e.Error.Code != "invalid_rule" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
    rr, e = doJSON(t, h, http.MethodPost, "/rates", `{"shipping_method_id":1,"from":"10","to":"1"}`)
    if rr.Code != http.StatusBadRequest || e.Error.Code != "invalid_rule" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
}

func TestRule_BadID(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodGet, "/rates/abc", "")
    if rr.Code != http.StatusBadRequest || e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
}

func TestRule_NotFound(t *testing.T) {
    h, _ := newTestServer(t)
    rr, e := doJSON(t, h, http.MethodPut, "/rates/42", `{"shipping_method_id":1,"from":"0","to":"1"}`)
    if rr.Code != http.StatusNotFound || e.Error.Code != "resource_not_found" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
    rr, e = doJSON(t, h, http.MethodDelete, "/rates/42", "")
    if rr.Code != http.StatusNotFound || e.Error.Code != "resource_not_found" {
        t.Fatalf("unexpected response %d %+v", rr.Code, e)
    }
}
