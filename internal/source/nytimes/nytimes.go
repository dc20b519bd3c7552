// Package nytimes adapts the New York Times Article Search API.
package nytimes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/pkg/httpclient"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

const (
	Name = "nytimes"

	DefaultBaseURL  = "https://api.nytimes.com/svc/search/v2/articlesearch.json"
	DefaultCooldown = 60 * time.Second

	// PageSize is fixed by the API.
	PageSize = 10

	dateLayout = "20060102"
)

// ensure Adapter implements source.Adapter
var _ source.Adapter = (*Adapter)(nil)

// Config holds the adapter settings. Zero fields fall back to defaults.
type Config struct {
	BaseURL  string
	APIKey   string
	Cooldown time.Duration
	Client   *httpclient.Client
}

// Adapter issues article search requests. Pages are zero-based.
type Adapter struct {
	baseURL  string
	apiKey   string
	cooldown time.Duration
	client   *httpclient.Client
}

// New returns an Adapter for cfg.
func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("nytimes: base url: %w", err)
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Client == nil {
		c, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, fmt.Errorf("nytimes: %w", err)
		}
		cfg.Client = c
	}
	return &Adapter{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		cooldown: cfg.Cooldown,
		client:   cfg.Client,
	}, nil
}

func (a *Adapter) Name() string   { return Name }
func (a *Adapter) FirstPage() int { return 0 }

type searchResponse struct {
	Status   string `json:"status"`
	Response struct {
		Docs []json.RawMessage `json:"docs"`
		Meta struct {
			Hits   source.FlexInt `json:"hits"`
			Offset source.FlexInt `json:"offset"`
		} `json:"meta"`
	} `json:"response"`
}

// Fetch requests one page of results, newest first.
func (a *Adapter) Fetch(ctx context.Context, w monthrange.Window, page int, query string) (*source.Page, error) {
	if page < a.FirstPage() {
		page = a.FirstPage()
	}

	body, err := source.Get(ctx, a.client, Name, a.URL(w, page, query), a.cooldown)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &source.RequestFailedError{Source: Name, StatusCode: 200, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &source.Page{
		Number:    page,
		Hits:      int(resp.Response.Meta.Hits),
		Documents: resp.Response.Docs,
	}, nil
}

// URL builds the request URL for one page.
func (a *Adapter) URL(w monthrange.Window, page int, query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("begin_date", w.Start.Format(dateLayout))
	params.Set("end_date", w.End.Format(dateLayout))
	params.Set("api-key", a.apiKey)
	params.Set("page", strconv.Itoa(page))
	params.Set("sort", "newest")
	return a.baseURL + "?" + params.Encode()
}
