package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultResearchURL = "https://serpapi.com/search.json"

const (
	researchNotConfigured = "Error: Search API key is not configured."
	researchMaxResults    = 5
)

// Research performs a web search through SerpAPI and summarizes the organic
// results.
type Research struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewResearch builds a Research adapter with a 10s request timeout.
func NewResearch(apiKey string) *Research {
	return &Research{
		APIKey:  apiKey,
		BaseURL: defaultResearchURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type researchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search returns up to five "Title / Summary" blocks for the topic, or an
// apology when the search yields nothing or fails.
func (r *Research) Search(ctx context.Context, topic string) string {
	if r.APIKey == "" {
		return researchNotConfigured
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", topic)
	q.Set("num", fmt.Sprint(researchMaxResults))
	q.Set("api_key", r.APIKey)

	var out researchResponse
	if err := getJSON(ctx, r.Client, r.BaseURL+"?"+q.Encode(), &out); err != nil {
		return "Sorry, an error occurred during the research."
	}
	if len(out.OrganicResults) == 0 {
		return fmt.Sprintf("Sorry, I couldn't find any information on '%s'.", topic)
	}

	blocks := make([]string, 0, researchMaxResults)
	for i, res := range out.OrganicResults {
		if i == researchMaxResults {
			break
		}
		blocks = append(blocks, fmt.Sprintf("Title: %s\nSummary: %s\n---", res.Title, res.Snippet))
	}
	return strings.Join(blocks, "\n")
}
