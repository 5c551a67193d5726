package compose

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/domain"
)

func newTestGenerator(t *testing.T, cfg config.HuggingFaceConfig) *Generator {
	t.Helper()
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 5
	}
	if cfg.Model == "" {
		cfg.Model = "google/flan-t5-small"
	}
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	return g
}

func assertValidSMS(t *testing.T, msg string) {
	t.Helper()
	if msg == "" {
		t.Fatal("composed message is empty")
	}
	if len(msg) > domain.MaxSMSLength {
		t.Fatalf("composed message is %d chars, max %d: %q", len(msg), domain.MaxSMSLength, msg)
	}
}

func TestComposeNotConfiguredUsesFallback(t *testing.T) {
	g := newTestGenerator(t, config.HuggingFaceConfig{})

	msg := g.Compose(context.Background(), CampaignContext{Name: "Ana Diaz", DaysSince: 45})

	assertValidSMS(t, msg)
	if !strings.Contains(msg, "Ana Diaz") {
		t.Errorf("message should contain customer name: %q", msg)
	}
	if !strings.Contains(msg, "20%") {
		t.Errorf("45 days away should get the 20%% offer: %q", msg)
	}
}

func TestComposeUsesGeneratedText(t *testing.T) {
	generated := "Hi Ana, we have saved a fresh 20% discount just for you at FreshMart this week."
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf-test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/models/google/flan-t5-small") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"generated_text": "` + generated + `"}]`))
	}))
	defer server.Close()

	g := newTestGenerator(t, config.HuggingFaceConfig{Token: "hf-test", BaseURL: server.URL})

	msg := g.Compose(context.Background(), CampaignContext{Name: "Ana", DaysSince: 10})

	assertValidSMS(t, msg)
	if msg != generated {
		t.Errorf("message = %q, want generated text", msg)
	}
}

func TestComposeBackendFailuresFallBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"error": "model loading"}`)) },
		},
		{
			"output too short",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`[{"generated_text": "Hi!"}]`)) },
		},
		{
			"not json",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`<html>gateway</html>`)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := newTestGenerator(t, config.HuggingFaceConfig{Token: "hf-test", BaseURL: server.URL})
			msg := g.Compose(context.Background(), CampaignContext{Name: "Ben", DaysSince: 70})

			assertValidSMS(t, msg)
			if !strings.Contains(msg, "25%") {
				t.Errorf("fallback for 70 days away should carry 25%% offer: %q", msg)
			}
		})
	}
}

func TestComposeBackendUnreachableFallsBack(t *testing.T) {
	// Point at a closed port.
	g := newTestGenerator(t, config.HuggingFaceConfig{Token: "hf-test", BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})

	msg := g.Compose(context.Background(), CampaignContext{Name: "Cara", DaysSince: 5})
	assertValidSMS(t, msg)
}

func TestComposeTruncatesLongGeneration(t *testing.T) {
	long := strings.Repeat("FreshMart loves you. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": "` + long + `"}`))
	}))
	defer server.Close()

	g := newTestGenerator(t, config.HuggingFaceConfig{Token: "hf-test", BaseURL: server.URL})
	msg := g.Compose(context.Background(), CampaignContext{Name: "Dee", DaysSince: 10})

	if len(msg) != domain.MaxSMSLength {
		t.Errorf("len = %d, want hard truncation to %d", len(msg), domain.MaxSMSLength)
	}
}

func TestFallbackDiscountLadder(t *testing.T) {
	g := newTestGenerator(t, config.HuggingFaceConfig{})

	tests := []struct {
		days      int
		wantOffer string
		wantLine  string
	}{
		{90, "25%", "We really miss you!"},
		{61, "25%", "We really miss you!"},
		{60, "20%", "We've missed you!"},
		{31, "20%", "We've missed you!"},
		{30, "15%", "We miss you!"},
		{0, "15%", "We miss you!"},
	}

	for _, tt := range tests {
		msg := g.Fallback(CampaignContext{Name: "Eve", DaysSince: tt.days})
		assertValidSMS(t, msg)
		if !strings.Contains(msg, tt.wantOffer) {
			t.Errorf("days=%d: message %q missing offer %s", tt.days, msg, tt.wantOffer)
		}
		if !strings.Contains(msg, tt.wantLine) {
			t.Errorf("days=%d: message %q missing line %q", tt.days, msg, tt.wantLine)
		}
	}
}

func TestFallbackOfferCodeWrapsAtHundred(t *testing.T) {
	g := newTestGenerator(t, config.HuggingFaceConfig{})

	msg := g.Fallback(CampaignContext{Name: "Finn", DaysSince: 105})
	if !strings.Contains(msg, "FRESH05") {
		t.Errorf("days=105 should yield code FRESH05: %q", msg)
	}

	msg = g.Fallback(CampaignContext{Name: "Finn", DaysSince: 7})
	if !strings.Contains(msg, "FRESH07") {
		t.Errorf("days=7 should yield code FRESH07: %q", msg)
	}
}

func TestFallbackEmptyNameDefaults(t *testing.T) {
	g := newTestGenerator(t, config.HuggingFaceConfig{})

	msg := g.Fallback(CampaignContext{DaysSince: 10})
	if !strings.Contains(msg, "Hi Customer,") {
		t.Errorf("empty name should default to Customer: %q", msg)
	}
}
