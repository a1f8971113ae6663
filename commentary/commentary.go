// Package commentary produces a short sports-style summary of a finished race
// through an OpenAI-compatible chat completions API.
package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/goldsprint/models"
	"github.com/Dosada05/goldsprint/race"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	// FallbackText is returned when no API key is configured.
	FallbackText = "No commentary available: configure an API key to get race commentary."
	// ErrorText is what callers show when the generator failed.
	ErrorText = "The commentator could not be reached."

	quickRaceLabel        = "Quick Race"
	disqualificationLabel = "DISQUALIFICATION"
)

// Generator is the text generation collaborator consumed by the tournament service.
// winner and loser come from the adjudicated race result.
type Generator interface {
	Generate(ctx context.Context, winner, loser models.PlayerStats, settings models.RaceSettings, raceContext string) (string, error)
}

// ContextLabel describes the race for the commentator: the round label of a
// tournament match, a quick race, and a marker when it ended in disqualification.
func ContextLabel(roundLabel string, disqualified bool) string {
	switch {
	case roundLabel == "" && disqualified:
		return disqualificationLabel + " (FALSE START)"
	case roundLabel == "":
		return quickRaceLabel
	case disqualified:
		return roundLabel + " - " + disqualificationLabel
	default:
		return roundLabel
	}
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Generate(ctx context.Context, winner, loser models.PlayerStats, settings models.RaceSettings, raceContext string) (string, error) {
	if c.apiKey == "" {
		return FallbackText, nil
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildPrompt(winner, loser, settings, raceContext)},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal commentary request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("commentary request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read commentary response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("commentary http %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &cc); err != nil {
		return "", fmt.Errorf("decode commentary response: %w", err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		return "", errors.New("commentary response had no content")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

const systemPrompt = "You are a wildly energetic sports commentator at a Gold Sprint event: two riders race on stationary bikes."

func buildPrompt(winner, loser models.PlayerStats, settings models.RaceSettings, raceContext string) string {
	var sb strings.Builder
	if raceContext != "" {
		fmt.Fprintf(&sb, "IMPORTANT: this is the %s!\n", raceContext)
	}
	fmt.Fprintf(&sb, "A race over %.0f meters has just finished.\n", settings.TargetDistance)
	fmt.Fprintf(&sb, "Winner: %s (%s)\n", winner.Name, describe(winner))
	fmt.Fprintf(&sb, "Runner-up: %s (%s)\n", loser.Name, describe(loser))
	sb.WriteString("Write a short, three-sentence, emotional summary of the duel. ")
	sb.WriteString("If it is a final, be ultra-dramatic. ")
	sb.WriteString("If the time gap was under one second, stress how close it was; if it was large, praise the winner's dominance.")
	return sb.String()
}

func describe(p models.PlayerStats) string {
	if race.Disqualified(p) {
		return fmt.Sprintf("disqualified after %d false starts", p.Warnings)
	}
	if p.FinishTime == nil || !p.Finished {
		return fmt.Sprintf("did not finish, distance %.0fm", p.Distance)
	}
	speed := p.Distance / *p.FinishTime * 3.6
	return fmt.Sprintf("time %.2fs, average speed %.1f km/h", *p.FinishTime, speed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
