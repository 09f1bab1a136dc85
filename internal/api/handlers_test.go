package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"market-scanner/internal/gateset"
	"market-scanner/internal/market"
	"market-scanner/internal/rules"
	"market-scanner/internal/scan"
)

type fixedProvider struct{}

func (fixedProvider) FetchOHLCV(_ context.Context, symbol string, _ int) (*market.Series, error) {
	klines := make([]market.Kline, 60)
	for i := range klines {
		klines[i] = market.Kline{Open: 100, High: 102, Low: 98, Close: 100, Volume: 1000}
	}
	return &market.Series{Symbol: symbol, Interval: "1d", Klines: klines}, nil
}

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)

	registry := rules.NewRegistry()
	sets := gateset.NewStore()
	eval := scan.NewEvaluator(fixedProvider{}, registry, sets, 60)
	orch := scan.NewOrchestrator(eval, sets, nil, nil, scan.NewPacer(0), []string{"BTCUSDT", "ETHUSDT"})

	return NewServer(ServerConfig{}, registry, sets, eval, orch, nil, nil)
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestListRules(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodGet, "/api/rules", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Rules []rules.Rule `json:"rules"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Rules) != 7 {
		t.Errorf("expected 7 rules, got %d", len(body.Rules))
	}
}

func TestListGateSetsIncludesPresets(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodGet, "/api/gate-sets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		GateSets []gateset.GateSetConfig `json:"gate_sets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.GateSets) < 4 {
		t.Errorf("presets missing, got %d sets", len(body.GateSets))
	}
}

func TestCreateGateSetAppliesDefaults(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodPost, "/api/gate-sets", map[string]interface{}{
		"id":   "custom",
		"name": "Custom",
		"gates": []map[string]interface{}{
			{"rule_id": rules.RuleLiquiditySweep},
			{"rule_id": rules.RuleVolumeSpike},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var cfg gateset.GateSetConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if !cfg.Gates[0].Required || cfg.Gates[1].Required {
		t.Error("required must default to true only for the master gate")
	}
	for i, g := range cfg.Gates {
		if g.Weight != 20 {
			t.Errorf("gate %d weight must default to 20, got %v", i, g.Weight)
		}
		if g.Gate != i {
			t.Errorf("gate %d index must default to its position, got %d", i, g.Gate)
		}
	}
}

func TestCreateGateSetRejectsBadBody(t *testing.T) {
	s := newTestServer()

	if w := doRequest(s, http.MethodPost, "/api/gate-sets", map[string]interface{}{"id": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing fields must get 400, got %d", w.Code)
	}
	w := doRequest(s, http.MethodPost, "/api/gate-sets", map[string]interface{}{
		"id":    "x",
		"name":  "X",
		"gates": []map[string]interface{}{{"weight": 50}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("a gate without rule_id must get 400, got %d", w.Code)
	}
}

func TestDeleteGateSet(t *testing.T) {
	s := newTestServer()

	if w := doRequest(s, http.MethodDelete, "/api/gate-sets/quick-scan", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := doRequest(s, http.MethodDelete, "/api/gate-sets/quick-scan", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete must get 404, got %d", w.Code)
	}
}

func TestScanSymbolEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodPost, "/api/scan", map[string]string{
		"symbol":      "BTCUSDT",
		"gate_set_id": "quick-scan",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res scan.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Symbol != "BTCUSDT" || res.TotalGates != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestScanSymbolUnknownGateSetStaysWellFormed(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodPost, "/api/scan", map[string]string{
		"symbol":      "BTCUSDT",
		"gate_set_id": "ghost",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("config errors ride inside the result, got %d", w.Code)
	}

	var res scan.ScanResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Error == "" {
		t.Error("expected the error field to be set")
	}
}

func TestScanWatchlistEndpoint(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodPost, "/api/scan-watchlist", map[string]interface{}{
		"gate_set_id": "quick-scan",
		"symbols":     []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res scan.WatchlistResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 3 || res.ScanID == "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestScanWatchlistRejectsBadBody(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodPost, "/api/scan-watchlist", map[string]int{"bogus": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScanDefaultWatchlistEndpoint(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodGet, "/api/scan/quick-scan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res scan.WatchlistResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Results) != 2 {
		t.Errorf("expected the default watchlist of 2 symbols, got %d", len(res.Results))
	}
}

func TestScanHistoryDisabled(t *testing.T) {
	w := doRequest(newTestServer(), http.MethodGet, "/api/scan-history", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("history without a database must get 501, got %d", w.Code)
	}
}
