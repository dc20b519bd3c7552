package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/newsfill/internal/config"
	"github.com/FranksOps/newsfill/internal/pipeline"
	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/internal/source/guardian"
	"github.com/FranksOps/newsfill/internal/source/nytimes"
	"github.com/FranksOps/newsfill/pkg/httpclient"
	"github.com/FranksOps/newsfill/pkg/ratelimit"
)

func newHTTPClient(c *config.Config) (*httpclient.Client, error) {
	profile, err := httpclient.ParseProfile(c.TLSProfile)
	if err != nil {
		return nil, err
	}
	return httpclient.New(httpclient.Config{Timeout: c.Timeout, Profile: profile})
}

// newAdapter builds the adapter for a source name.
func newAdapter(c *config.Config, name string) (source.Adapter, error) {
	s, err := c.Source(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, fmt.Errorf("%s: api key is not set (NEWSFILL_%s_API_KEY)", name, strings.ToUpper(name))
	}

	client, err := newHTTPClient(c)
	if err != nil {
		return nil, err
	}

	switch name {
	case config.NYTimes:
		a, err := nytimes.New(nytimes.Config{BaseURL: s.BaseURL, APIKey: s.APIKey, Cooldown: s.RateLimitCooldown, Client: client})
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.Guardian:
		a, err := guardian.New(guardian.Config{BaseURL: s.BaseURL, APIKey: s.APIKey, Cooldown: s.RateLimitCooldown, Client: client})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

// newOrchestrator builds the monthly fetcher for a source.
func newOrchestrator(c *config.Config, name string, log *slog.Logger) (*pipeline.Orchestrator, error) {
	adapter, err := newAdapter(c, name)
	if err != nil {
		return nil, err
	}
	s, _ := c.Source(name)
	return pipeline.New(adapter, pipeline.Config{
		Queries:           c.Queries,
		QueryDelay:        s.QueryDelay,
		PageDelay:         s.PageDelay,
		MaxPages:          s.MaxPages,
		MinResults:        s.MinResults,
		RateLimitCooldown: s.RateLimitCooldown,
		Sleeper:           ratelimit.Wall,
	}, log)
}

// parseSources expands "all" and validates names.
func parseSources(names []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "all" {
			for _, s := range config.Sources {
				if !seen[s] {
					seen[s] = true
					out = append(out, s)
				}
			}
			continue
		}
		if _, err := (&config.Config{}).Source(n); err != nil {
			return nil, err
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no source selected")
	}
	return out, nil
}
