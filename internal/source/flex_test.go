package source

import (
	"encoding/json"
	"testing"
)

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`1200`, 1200, false},
		{`"845"`, 845, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`12.0`, 12, false},
		{`"many"`, 0, true},
	}

	for _, tt := range tests {
		var v struct {
			N FlexInt `json:"n"`
		}
		err := json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &v)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if int(v.N) != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.in, tt.want, v.N)
		}
	}

	if FlexInt(-3).NonNegative() != 0 {
		t.Error("expected negative count to clamp to zero")
	}
}
