// Package tools implements the adapters the model collaborator may invoke
// during a conversation turn: current weather, math evaluation, news
// headlines, and web research.
//
// Every adapter is a total function from the model's point of view: it always
// returns text and never an error. Upstream failures, unknown inputs, and
// missing credentials all reduce to a human-readable apology so a broken tool
// can never terminate the enclosing turn.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// weatherNotConfigured is returned whenever the OpenWeather key is absent.
const weatherNotConfigured = "Error: Weather API key is not configured."

// weatherApology is the fixed failure reply for any upstream problem
// (network error, unknown city, bad payload).
const weatherApology = "Sorry, an error occurred while fetching the weather."

// Weather fetches current conditions from OpenWeather.
type Weather struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewWeather builds a Weather adapter with a 10s request timeout.
func NewWeather(apiKey string) *Weather {
	return &Weather{
		APIKey:  apiKey,
		BaseURL: defaultWeatherURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current returns a one-line description of the city's weather in metric
// units, or an apology.
func (w *Weather) Current(ctx context.Context, city string) string {
	if w.APIKey == "" {
		return weatherNotConfigured
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.APIKey)
	q.Set("units", "metric")

	var out weatherResponse
	if err := getJSON(ctx, w.Client, w.BaseURL+"?"+q.Encode(), &out); err != nil {
		return weatherApology
	}
	if len(out.Weather) == 0 {
		return weatherApology
	}
	return fmt.Sprintf("The current weather in %s is %.1f°C with %s.",
		city, out.Main.Temp, out.Weather[0].Description)
}

// getJSON performs one GET and decodes a JSON body. Non-2xx statuses are
// errors. Bodies are capped at 1 MiB; the upstreams return small payloads.
func getJSON(ctx context.Context, client *http.Client, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
