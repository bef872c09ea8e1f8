package browser

import (
	"testing"

	"github.com/use-agent/partscout/config"
)

func TestIsTrackerDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"stats.g.doubleclick.net", true},
		{"C.AMAZON-ADSYSTEM.COM", true},
		{"www.amazon.in", false},
		{"rukminim2.flixcart.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := isTrackerDomain(tt.host); got != tt.want {
				t.Errorf("isTrackerDomain(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestIsXPath(t *testing.T) {
	if !isXPath("//button[contains(text(), '✕')]") {
		t.Error("expected XPath selector to be detected")
	}
	if isXPath("div[data-id]") {
		t.Error("CSS selector misdetected as XPath")
	}
}

func TestRelease_ForeignPage(t *testing.T) {
	m := NewManager(config.BrowserConfig{Headless: true})
	if err := m.Release(nil); err != ErrForeignPage {
		t.Errorf("Release(nil) = %v, want ErrForeignPage", err)
	}
}

func TestSessionClose_Idempotent(t *testing.T) {
	calls := 0
	s := &Session{onRelease: func() { calls++ }}
	if err := s.close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if calls != 1 {
		t.Errorf("onRelease called %d times, want 1", calls)
	}
}
