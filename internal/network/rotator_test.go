package network

import (
	"errors"
	"testing"
	"time"
)

func TestRotatorRoundRobin(t *testing.T) {
	rotator, err := NewRotator([]string{"http://a.test:8080", " ", "http://b.test:8080"}, time.Minute)
	if err != nil {
		t.Fatalf("NewRotator() error = %v", err)
	}

	var got []string
	for i := 0; i < 3; i++ {
		proxy, err := rotator.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, proxy.Host)
	}
	want := []string{"a.test:8080", "b.test:8080", "a.test:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Next() sequence = %v, want %v", got, want)
		}
	}
}

func TestRotatorBansOnRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rotator, err := NewRotator([]string{"http://a.test:1", "http://b.test:1"}, time.Minute)
	if err != nil {
		t.Fatalf("NewRotator() error = %v", err)
	}
	rotator.now = func() time.Time { return now }

	first, _ := rotator.Next()
	rotator.Report(first, 429)
	rotator.Report(first, 500)

	for i := 0; i < 2; i++ {
		proxy, err := rotator.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if proxy.Host != "b.test:1" {
			t.Fatalf("expected banned proxy to be skipped, got %s", proxy.Host)
		}
	}

	second, _ := rotator.Next()
	rotator.Report(second, 403)
	if _, err := rotator.Next(); !errors.Is(err, ErrNoProxies) {
		t.Fatalf("Next() error = %v, want ErrNoProxies", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := rotator.Next(); err != nil {
		t.Fatalf("expected ban to expire, got %v", err)
	}
}

func TestNewRotatorRejectsInvalidProxy(t *testing.T) {
	if _, err := NewRotator([]string{"not-a-proxy"}, time.Minute); err == nil {
		t.Fatalf("expected error for proxy without scheme")
	}
}
