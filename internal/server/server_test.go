package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/folioworks/folio/internal/app"
	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/models"
)

// stubQuoteUpstream fakes the provider's quote endpoint with fixed prices.
func stubQuoteUpstream(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var results []map[string]interface{}
		for _, symbol := range strings.Split(r.URL.Query().Get("symbols"), ",") {
			price, ok := prices[symbol]
			if !ok {
				continue
			}
			results = append(results, map[string]interface{}{
				"symbol":                     symbol,
				"regularMarketPrice":         price,
				"regularMarketChange":        2.5,
				"regularMarketChangePercent": 1.2,
				"regularMarketVolume":        1000,
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"quoteResponse": map[string]interface{}{"result": results, "error": nil},
		})
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func newTestServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()

	upstream := stubQuoteUpstream(t, prices)

	dir := t.TempDir()
	usersFile := filepath.Join(dir, "users.json")
	users := `{"users":[{"username":"alice","email":"alice@example.com","password":"secret123","role":"admin"}]}`
	if err := os.WriteFile(usersFile, []byte(users), 0644); err != nil {
		t.Fatalf("failed to write users file: %v", err)
	}

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 4310},
		Auth: config.AuthConfig{
			JWTSecret:  "integration-test-secret",
			SessionTTL: "1h",
			UsersFile:  usersFile,
		},
		Quotes: config.QuotesConfig{
			BaseURL:      upstream.URL,
			Timeout:      "5s",
			CacheTTL:     "1m",
			RequestDelay: "1ms",
		},
		Storage: config.StorageConfig{
			Badger: config.BadgerConfig{Path: filepath.Join(dir, "badger")},
		},
	}

	application, err := app.New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to initialize app: %v", err)
	}
	t.Cleanup(func() { application.Close() })

	ts := httptest.NewServer(New(application).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, data
}

func login(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()
	resp, body := do(t, client, "POST", baseURL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d %s", resp.StatusCode, body)
	}
}

func TestServer_EndToEndPortfolioFlow(t *testing.T) {
	ts := newTestServer(t, map[string]float64{"AAPL": 150.5, "MSFT": 300})
	client := newClient(t)

	// Everything behind the session wall rejects anonymous requests.
	resp, _ := do(t, client, "GET", ts.URL+"/api/portfolios", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", resp.StatusCode)
	}

	login(t, client, ts.URL)

	resp, body := do(t, client, "GET", ts.URL+"/api/auth/me", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "alice") {
		t.Fatalf("me endpoint failed: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, client, "POST", ts.URL+"/api/portfolios", map[string]string{"name": "Growth"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create portfolio failed: %d %s", resp.StatusCode, body)
	}
	var portfolio models.Portfolio
	if err := json.Unmarshal(body, &portfolio); err != nil {
		t.Fatalf("failed to decode portfolio: %v", err)
	}

	resp, body = do(t, client, "POST", ts.URL+"/api/portfolios/"+portfolio.ID+"/holdings", map[string]interface{}{
		"ticker":       "aapl",
		"company_name": "Apple Inc.",
		"shares":       10,
		"avg_cost":     100,
		"sector":       "Technology",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create holding failed: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, client, "GET", ts.URL+"/api/portfolios/"+portfolio.ID+"/valuation", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valuation failed: %d %s", resp.StatusCode, body)
	}
	var view struct {
		State     string                     `json:"state"`
		Valuation *models.PortfolioValuation `json:"valuation"`
	}
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("failed to decode valuation: %v", err)
	}
	if view.Valuation == nil {
		t.Fatal("expected a computed valuation")
	}
	if view.Valuation.TotalValue != 1505 {
		t.Errorf("expected total value 1505, got %v", view.Valuation.TotalValue)
	}
	if view.Valuation.Holdings[0].PriceEstimated {
		t.Error("expected live price, not an estimate")
	}

	resp, body = do(t, client, "POST", ts.URL+"/api/reports", map[string]string{
		"portfolio_id": portfolio.ID,
		"type":         "morning",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("report generation failed: %d %s", resp.StatusCode, body)
	}
	var doc models.ReportDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if doc.Type != models.ReportMorning || len(doc.Sections) == 0 {
		t.Errorf("unexpected report document: %+v", doc)
	}

	resp, body = do(t, client, "GET", ts.URL+"/api/quotes/msft", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quote fetch failed: %d %s", resp.StatusCode, body)
	}
	var quote models.Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		t.Fatalf("failed to decode quote: %v", err)
	}
	if quote.Ticker != "MSFT" || quote.CurrentPrice != 300 {
		t.Errorf("unexpected quote: %+v", quote)
	}

	resp, body = do(t, client, "GET", ts.URL+"/api/quotes/cache", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "AAPL") {
		t.Errorf("expected AAPL in cache status: %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, client, "POST", ts.URL+"/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}
	resp, _ = do(t, client, "GET", ts.URL+"/api/portfolios", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestServer_HealthAndVersion(t *testing.T) {
	ts := newTestServer(t, nil)
	client := newClient(t)

	resp, body := do(t, client, "GET", ts.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status"`) {
		t.Errorf("health check failed: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, client, "GET", ts.URL+"/api/version", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "version") {
		t.Errorf("version endpoint failed: %d %s", resp.StatusCode, body)
	}
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	client := newClient(t)

	for _, path := range []string{"/api/unknown", "/api/portfolios/p1/unknown", "/api/quotes/a/b"} {
		resp, body := do(t, client, "GET", ts.URL+path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 for %s, got %d", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON 404 for %s, got content type %q", path, ct)
		}
		if !strings.Contains(string(body), "Not Found") {
			t.Errorf("unexpected 404 body for %s: %s", path, body)
		}
	}
}

func TestServer_MiddlewareHeaders(t *testing.T) {
	ts := newTestServer(t, nil)
	client := newClient(t)

	resp, _ := do(t, client, "GET", ts.URL+"/api/health", nil)
	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("expected a correlation id header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on responses")
	}

	req, err := http.NewRequest("GET", ts.URL+"/api/health", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("X-Request-ID", "req-12345")
	echo, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	echo.Body.Close()
	if got := echo.Header.Get("X-Correlation-ID"); got != "req-12345" {
		t.Errorf("expected caller correlation id to be echoed, got %q", got)
	}

	preflight, err := http.NewRequest("OPTIONS", ts.URL+"/api/portfolios", nil)
	if err != nil {
		t.Fatalf("failed to build preflight: %v", err)
	}
	resp2, err := client.Do(preflight)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", resp2.StatusCode)
	}
	if resp2.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS headers on preflight response")
	}
}
