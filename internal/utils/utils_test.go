package utils

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "10", want: 10 * time.Second},
		{in: "1.5", want: 1500 * time.Millisecond},
		{in: "10s", want: 10 * time.Second},
		{in: `"5m"`, want: 5 * time.Minute},
		{in: " '1h' ", want: time.Hour},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "-1m", wantErr: true},
		{in: "Inf", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDurationEnv(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDurationEnv(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDurationEnv(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDurationEnv(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{" http://a.test, ,http://b.test ", []string{"http://a.test", "http://b.test"}},
		{`"*"`, []string{"*"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitList(tt.in)); diff != "" {
			t.Errorf("SplitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
