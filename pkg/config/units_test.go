package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationRoundTrip(t *testing.T) {
	tests := []struct {
		yaml string
		want time.Duration
	}{
		{"250ms", 250 * time.Millisecond},
		{"3s", 3 * time.Second},
		{"1m30s", 90 * time.Second},
	}

	for _, tt := range tests {
		var d Duration
		if err := yaml.Unmarshal([]byte(tt.yaml), &d); err != nil {
			t.Fatalf("unmarshal %q: %v", tt.yaml, err)
		}
		if time.Duration(d) != tt.want {
			t.Errorf("unmarshal %q = %v, want %v", tt.yaml, time.Duration(d), tt.want)
		}

		out, err := yaml.Marshal(d)
		if err != nil {
			t.Fatalf("marshal %v: %v", d, err)
		}
		var back Duration
		if err := yaml.Unmarshal(out, &back); err != nil {
			t.Fatalf("re-unmarshal %q: %v", out, err)
		}
		if back != d {
			t.Errorf("round trip %q changed value: %v != %v", tt.yaml, back, d)
		}
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
