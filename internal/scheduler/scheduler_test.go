package scheduler

import (
	"strings"
	"testing"
)

func TestNewRejectsInvalidExpression(t *testing.T) {
	tests := []string{
		"not a cron line",
		"61 * * * *",
		"",
	}
	for _, spec := range tests {
		s, err := New(spec, func() {})
		if err == nil {
			t.Errorf("New(%q) should fail", spec)
			continue
		}
		if !strings.Contains(err.Error(), "invalid cron expression") {
			t.Errorf("New(%q) error = %q", spec, err)
		}
		if s != nil {
			t.Errorf("New(%q) should return a nil scheduler on error", spec)
		}
	}
}

func TestNewAcceptsStandardExpression(t *testing.T) {
	s, err := New("0 7 * * *", func() {})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Start()
	s.Stop()
}
