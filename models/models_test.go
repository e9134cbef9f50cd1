package models

import (
	"testing"
	"time"
)

func TestNewTokenExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tok := NewToken(7, "abc", false, now, TokenTTL)
	if tok.ExpirationDate == nil {
		t.Fatalf("expected expiration date for non-permanent token")
	}
	if want := now.Add(72 * time.Hour); !tok.ExpirationDate.Equal(want) {
		t.Fatalf("expiration = %v, want %v", tok.ExpirationDate, want)
	}
	if tok.Expired(now.Add(71 * time.Hour)) {
		t.Fatalf("token should still be valid before ttl")
	}
	if !tok.Expired(now.Add(72 * time.Hour)) {
		t.Fatalf("token should be expired at ttl")
	}

	perm := NewToken(7, "def", true, now, TokenTTL)
	if perm.ExpirationDate != nil {
		t.Fatalf("permanent token must not carry an expiration date")
	}
	if perm.Expired(now.Add(1000 * time.Hour)) {
		t.Fatalf("permanent token never expires")
	}
}

func TestSupportedAudioFormats(t *testing.T) {
	for _, ok := range []string{"flac", "m4a", "mp3", "mp4", "mpeg", "mpga", "oga", "ogg", "wav", "webm"} {
		if _, found := SupportedAudioFormats[ok]; !found {
			t.Errorf("%s should be supported", ok)
		}
	}
	for _, bad := range []string{"aiff", "x-wav", ""} {
		if _, found := SupportedAudioFormats[bad]; found {
			t.Errorf("%q should be rejected", bad)
		}
	}
}
