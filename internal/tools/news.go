package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultNewsURL = "https://gnews.io/api/v4/top-headlines"

const (
	newsNotConfigured = "Error: News API key is not configured."
	newsMaxHeadlines  = 5
)

// genericNewsTerms fold into an unfiltered top-headlines query; any other
// topic becomes a keyword filter.
var genericNewsTerms = map[string]struct{}{
	"news":        {},
	"latest news": {},
	"latest":      {},
	"headlines":   {},
	"top news":    {},
	"india":       {},
	"bharat":      {},
}

// News fetches headlines from GNews, scoped to India.
type News struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewNews builds a News adapter with a 10s request timeout.
func NewNews(apiKey string) *News {
	return &News{
		APIKey:  apiKey,
		BaseURL: defaultNewsURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type newsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines returns up to five "title (source)" lines for the topic, or an
// apology when nothing matches or the provider call fails.
func (n *News) Headlines(ctx context.Context, topic string) string {
	if n.APIKey == "" {
		return newsNotConfigured
	}

	q := url.Values{}
	q.Set("country", "in")
	q.Set("lang", "en")
	q.Set("max", fmt.Sprint(newsMaxHeadlines))
	q.Set("apikey", n.APIKey)
	if _, generic := genericNewsTerms[strings.ToLower(strings.TrimSpace(topic))]; !generic {
		q.Set("q", topic)
	}

	var out newsResponse
	if err := getJSON(ctx, n.Client, n.BaseURL+"?"+q.Encode(), &out); err != nil {
		return fmt.Sprintf("Sorry, an error occurred while fetching the news on '%s'.", topic)
	}
	if out.TotalArticles == 0 || len(out.Articles) == 0 {
		return fmt.Sprintf("Sorry, I couldn't find any recent news on '%s' from India.", topic)
	}

	lines := make([]string, 0, newsMaxHeadlines)
	for i, a := range out.Articles {
		if i == newsMaxHeadlines {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", a.Title, a.Source.Name))
	}
	return "Here are the top headlines from India:\n" + strings.Join(lines, "\n")
}
