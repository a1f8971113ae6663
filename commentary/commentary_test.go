package commentary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/goldsprint/models"
	"github.com/Dosada05/goldsprint/race"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rider(name string, seconds float64) models.PlayerStats {
	return models.PlayerStats{Name: name, Distance: 250, FinishTime: &seconds, Finished: true}
}

func TestContextLabel(t *testing.T) {
	assert.Equal(t, "Final", ContextLabel("Final", false))
	assert.Equal(t, "Semifinal - DISQUALIFICATION", ContextLabel("Semifinal", true))
	assert.Equal(t, "Quick Race", ContextLabel("", false))
	assert.Equal(t, "DISQUALIFICATION (FALSE START)", ContextLabel("", true))
}

func TestGenerate_WithoutKeyReturnsFallback(t *testing.T) {
	text, err := NewClient(Config{}).Generate(context.Background(), rider("A", 20), rider("B", 21), models.DefaultRaceSettings(), "Final")
	require.NoError(t, err)
	assert.Equal(t, FallbackText, text)
}

func TestGenerate_CallsChatCompletions(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			gotPrompt = req.Messages[1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  What a finish!  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "secret", Model: "test-model", BaseURL: srv.URL + "/"})
	text, err := c.Generate(context.Background(), rider("Ola", 20.5), rider("Ala", 22), models.DefaultRaceSettings(), "Final")
	require.NoError(t, err)

	assert.Equal(t, "What a finish!", text)
	assert.Contains(t, gotPrompt, "this is the Final")
	assert.Contains(t, gotPrompt, "Winner: Ola")
	assert.Contains(t, gotPrompt, "Runner-up: Ala")
}

func TestGenerate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 1000), http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL}).Generate(context.Background(), rider("A", 1), rider("B", 2), models.DefaultRaceSettings(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestBuildPrompt_DisqualifiedRiderIsRunnerUp(t *testing.T) {
	ann := models.PlayerStats{Name: "Ann", Distance: 40}
	bea := models.PlayerStats{Name: "Bea", Warnings: race.MaxWarnings}

	result, err := race.Decide(ann, bea)
	require.NoError(t, err)
	require.Equal(t, "Ann", result.WinnerName)

	prompt := buildPrompt(ann, bea, models.DefaultRaceSettings(), ContextLabel("Final", result.Disqualified))
	assert.Contains(t, prompt, "this is the Final - DISQUALIFICATION")
	assert.Contains(t, prompt, "Winner: Ann (did not finish, distance 40m)")
	assert.Contains(t, prompt, "Runner-up: Bea (disqualified after 3 false starts)")
}
