package query

import (
	"errors"
	"strings"
	"testing"
)

func TestTrumpCovid(t *testing.T) {
	if err := TrumpCovid.Validate(); err != nil {
		t.Fatalf("default set should be valid: %v", err)
	}
	if len(TrumpCovid.Coverage) != 5 {
		t.Errorf("expected 5 coverage queries, got %d", len(TrumpCovid.Coverage))
	}
	for i, q := range TrumpCovid.Coverage {
		if !strings.Contains(q, "COVID") || !strings.Contains(q, "Covid") {
			t.Errorf("%s should include both capitalisations: %s", Label(i), q)
		}
	}
	if strings.Contains(TrumpCovid.Paginate, "Walter Reed") {
		t.Errorf("pagination query should be the narrower broad query")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  Set
		want error
	}{
		{"no coverage", Set{Paginate: "x"}, ErrNoCoverage},
		{"no paginate", Set{Coverage: []string{"x"}}, ErrNoPaginate},
		{"blank paginate", Set{Coverage: []string{"x"}, Paginate: "  "}, ErrNoPaginate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := (Set{Coverage: []string{"a", ""}, Paginate: "b"}).Validate(); err == nil {
		t.Error("expected error for blank coverage query")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(0); got != "Q1" {
		t.Errorf("expected Q1, got %s", got)
	}
}
