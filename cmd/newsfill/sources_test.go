package main

import (
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/newsfill/internal/config"
	"github.com/FranksOps/newsfill/internal/query"
)

func TestParseSources(t *testing.T) {
	got, err := parseSources([]string{"guardian", "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, ",") != "guardian,nytimes" {
		t.Errorf("expected guardian,nytimes, got %v", got)
	}

	if _, err := parseSources([]string{"bbc"}); err == nil {
		t.Error("expected error for unknown source")
	}
	if _, err := parseSources(nil); err == nil {
		t.Error("expected error for no sources")
	}
}

func testConfig() *config.Config {
	src := config.Source{From: "2020-01-01", MaxPages: 2, QueryDelay: time.Millisecond}
	return &config.Config{
		OutputDir:  "data",
		Timeout:    time.Second,
		TLSProfile: "go",
		Queries:    query.TrumpCovid,
		NYTimes:    src,
		Guardian:   src,
	}
}

func TestNewAdapter_RequiresKey(t *testing.T) {
	c := testConfig()
	_, err := newAdapter(c, config.Guardian)
	if err == nil || !strings.Contains(err.Error(), "NEWSFILL_GUARDIAN_API_KEY") {
		t.Errorf("expected missing key error naming the variable, got %v", err)
	}
}

func TestNewOrchestrator(t *testing.T) {
	c := testConfig()
	c.NYTimes.APIKey = "k"

	o, err := newOrchestrator(c, config.NYTimes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Source() != config.NYTimes {
		t.Errorf("expected nytimes, got %s", o.Source())
	}
}
