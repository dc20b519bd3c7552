// Package guardian adapts the Guardian Open Platform content search API.
package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/pkg/httpclient"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

const (
	Name = "guardian"

	DefaultBaseURL  = "https://content.guardianapis.com/search"
	DefaultCooldown = 10 * time.Second
	DefaultPageSize = 50

	dateLayout = "2006-01-02"
)

var (
	showFields = []string{"headline", "trailText", "body", "byline", "wordcount", "thumbnail", "standfirst"}
	showTags   = []string{"keyword", "contributor"}
)

// ensure Adapter implements source.Adapter
var _ source.Adapter = (*Adapter)(nil)

type Config struct {
	BaseURL  string
	APIKey   string
	Cooldown time.Duration
	PageSize int
	Client   *httpclient.Client
}

// Adapter issues content search requests. Pages are one-based.
type Adapter struct {
	baseURL  string
	apiKey   string
	cooldown time.Duration
	pageSize int
	client   *httpclient.Client
}

func New(cfg Config) (*Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("guardian: base url: %w", err)
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Client == nil {
		c, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, fmt.Errorf("guardian: %w", err)
		}
		cfg.Client = c
	}
	return &Adapter{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		cooldown: cfg.Cooldown,
		pageSize: cfg.PageSize,
		client:   cfg.Client,
	}, nil
}

func (a *Adapter) Name() string   { return Name }
func (a *Adapter) FirstPage() int { return 1 }

type searchResponse struct {
	Response struct {
		Status      string            `json:"status"`
		Message     string            `json:"message"`
		Total       source.FlexInt    `json:"total"`
		CurrentPage source.FlexInt    `json:"currentPage"`
		Pages       source.FlexInt    `json:"pages"`
		Results     []json.RawMessage `json:"results"`
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
	if resp.Response.Status != "" && resp.Response.Status != "ok" {
		return nil, &source.RequestFailedError{Source: Name, StatusCode: 200, Err: fmt.Errorf("api status %q: %s", resp.Response.Status, resp.Response.Message)}
	}

	number := int(resp.Response.CurrentPage)
	if number == 0 {
		number = page
	}

	return &source.Page{
		Number:    number,
		Pages:     int(resp.Response.Pages),
		Hits:      int(resp.Response.Total),
		Documents: resp.Response.Results,
	}, nil
}

// URL builds the request URL for one page.
func (a *Adapter) URL(w monthrange.Window, page int, query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from-date", w.Start.Format(dateLayout))
	params.Set("to-date", w.End.Format(dateLayout))
	params.Set("page", strconv.Itoa(page))
	params.Set("page-size", strconv.Itoa(a.pageSize))
	params.Set("order-by", "newest")
	params.Set("show-fields", strings.Join(showFields, ","))
	params.Set("show-tags", strings.Join(showTags, ","))
	params.Set("api-key", a.apiKey)
	return a.baseURL + "?" + params.Encode()
}
