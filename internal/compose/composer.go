// Package compose produces personalized retention SMS messages.
//
// A generative backend (Hugging Face inference API) is attempted first; every
// backend failure mode is soft and recovered by a deterministic template, so
// Compose always returns a usable message. Callers never see a composer
// error.
package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/osteele/liquid"

	"github.com/freshmart/retention/internal/config"
	"github.com/freshmart/retention/internal/domain"
	"github.com/freshmart/retention/internal/pkg/logger"
)

// minUsableLength rejects degenerate generative output. Anything shorter is
// treated as a soft failure and replaced by the fallback.
const minUsableLength = 20

// CampaignContext carries the per-customer facts the composer personalizes on.
type CampaignContext struct {
	Name             string
	DaysSince        int
	LastProduct      string
	FavoriteCategory string
}

// fallbackTemplate is the deterministic retention message. It is rendered
// with a discount ladder keyed on days since the last purchase and always
// fits within a single SMS.
const fallbackTemplate = `Hi {{ name }}, {{ line }} Enjoy {{ offer }} off your next FreshMart visit. Use code {{ code }}. See you soon!`

// Generator composes retention messages, preferring the generative backend
// when a token is configured.
type Generator struct {
	cfg        config.HuggingFaceConfig
	httpClient *http.Client
	fallback   *liquid.Template
}

// NewGenerator creates a message generator. The backend token may be empty;
// that is a valid "not configured" state in which every message comes from
// the fallback template.
func NewGenerator(cfg config.HuggingFaceConfig) (*Generator, error) {
	tmpl, err := liquid.NewEngine().ParseString(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("compose: parse fallback template: %w", err)
	}
	return &Generator{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		fallback: tmpl,
	}, nil
}

// IsConfigured reports whether the generative backend has a credential.
func (g *Generator) IsConfigured() bool {
	return g.cfg.Token != ""
}

// Compose returns a retention message for the customer. The result is always
// non-empty and at most domain.MaxSMSLength characters, regardless of backend
// availability.
func (g *Generator) Compose(ctx context.Context, cc CampaignContext) string {
	if msg, ok := g.generate(ctx, cc); ok {
		return msg
	}
	return g.Fallback(cc)
}

// generate calls the inference API. Every failure (missing token, transport
// error, non-2xx, malformed body, output too short) returns ok=false.
func (g *Generator) generate(ctx context.Context, cc CampaignContext) (string, bool) {
	if !g.IsConfigured() {
		return "", false
	}

	body, err := json.Marshal(map[string]string{"inputs": g.buildPrompt(cc)})
	if err != nil {
		return "", false
	}

	url := fmt.Sprintf("%s/models/%s", g.cfg.BaseURL, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.Warn("generative backend unreachable", "error", err.Error())
		return "", false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("generative backend error", "status", resp.StatusCode)
		return "", false
	}

	msg, ok := extractGeneratedText(respBody)
	if !ok {
		logger.Warn("generative backend returned unusable output")
		return "", false
	}
	return msg, true
}

// buildPrompt constrains the model: plain tone, no emoji, single-SMS length.
func (g *Generator) buildPrompt(cc CampaignContext) string {
	name := cc.Name
	if name == "" {
		name = "Customer"
	}
	return fmt.Sprintf(
		"Write a friendly retail SMS under 160 characters.\n"+
			"Customer name: %s\n"+
			"Last visit: %d days ago\n"+
			"Offer: 20%% discount\n"+
			"Tone: warm, simple, professional\n"+
			"Do not use emojis.\n",
		name, cc.DaysSince)
}

// extractGeneratedText parses the inference response, which is either a list
// of {generated_text} objects or a single one.
func extractGeneratedText(body []byte) (string, bool) {
	type generation struct {
		GeneratedText string `json:"generated_text"`
	}

	var text string
	var list []generation
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		text = list[0].GeneratedText
	} else {
		var single generation
		if err := json.Unmarshal(body, &single); err != nil {
			return "", false
		}
		text = single.GeneratedText
	}

	text = strings.TrimSpace(text)
	if len(text) < minUsableLength {
		return "", false
	}
	return truncate(text, domain.MaxSMSLength), true
}

// Fallback renders the deterministic retention message. The discount ladder
// escalates with time away: over 60 days gets the strongest offer.
func (g *Generator) Fallback(cc CampaignContext) string {
	name := cc.Name
	if name == "" {
		name = "Customer"
	}

	var offer, line string
	switch {
	case cc.DaysSince > 60:
		offer, line = "25%", "We really miss you!"
	case cc.DaysSince > 30:
		offer, line = "20%", "We've missed you!"
	default:
		offer, line = "15%", "We miss you!"
	}

	code := fmt.Sprintf("FRESH%02d", cc.DaysSince%100)

	out, err := g.fallback.RenderString(map[string]interface{}{
		"name":  name,
		"line":  line,
		"offer": offer,
		"code":  code,
	})
	if err != nil {
		// Render can only fail on binding issues; the plain sentence keeps
		// the guarantee intact.
		out = fmt.Sprintf("Hi %s, %s Enjoy %s off your next FreshMart visit. Use code %s. See you soon!",
			name, line, offer, code)
	}
	return truncate(strings.TrimSpace(out), domain.MaxSMSLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
