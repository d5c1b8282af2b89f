package auth

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestFixRedirectURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost":               "http://localhost:6789",
		"http://localhost:8080/callback": "http://localhost:6789/callback",
		"http://127.0.0.1:6789":          "http://127.0.0.1:6789",
		"urn:ietf:wg:oauth:2.0:oob":      "http://localhost:6789/oauth2callback",
		"https://example.com/cb":         "https://example.com/cb",
	}
	for in, want := range cases {
		if got := FixRedirectURL(in); got != want {
			t.Errorf("FixRedirectURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsServiceAccount(t *testing.T) {
	if !IsServiceAccount([]byte(`{"type":"service_account","client_email":"x@y"}`)) {
		t.Error("service account key not detected")
	}
	if IsServiceAccount([]byte(`{"installed":{"client_id":"abc"}}`)) {
		t.Error("client secret detected as service account")
	}
	if IsServiceAccount([]byte(`not json`)) {
		t.Error("garbage detected as service account")
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", TokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" || !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("unexpected token %+v", got)
	}
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSourceWritesOnRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old", RefreshToken: "r"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	src := &savingTokenSource{base: staticSource{fresh}, path: path, last: old}
	if _, err := src.Token(); err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("refreshed token not saved: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("saved token = %q", got.AccessToken)
	}
}
