package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/harrisonrobin/backlog/pkg/config"
)

const (
	// TokenFile is where the user's OAuth token (access + refresh) is cached,
	// inside the configuration directory.
	TokenFile = "token.json"

	// LocalhostAuthPort is the port the local web server listens on to
	// capture the OAuth redirect.
	LocalhostAuthPort = "6789"

	serviceAccountType = "service_account"
)

// Scopes needed to read and rewrite the spreadsheets.
var Scopes = []string{sheets.SpreadsheetsScope}

// IsServiceAccount reports whether a credentials file holds a service
// account key rather than an OAuth client secret.
func IsServiceAccount(b []byte) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return false
	}
	return probe.Type == serviceAccountType
}

// GetConfig creates an oauth2.Config from an OAuth client secret file.
func GetConfig(credentialsFile string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	cfg.RedirectURL = FixRedirectURL(cfg.RedirectURL)
	return cfg, nil
}

// FixRedirectURL points localhost and out-of-band redirects at the local
// callback server.
func FixRedirectURL(redirect string) string {
	if redirect == "urn:ietf:wg:oauth:2.0:oob" {
		fixed := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
		log.Printf("Overriding 'urn:ietf:wg:oauth:2.0:oob' RedirectURL to: %s", fixed)
		return fixed
	}

	parsed, err := url.Parse(redirect)
	if err != nil {
		log.Printf("Warning: Could not parse RedirectURL '%s': %v. Using it as is.", redirect, err)
		return redirect
	}
	if parsed.Hostname() != "localhost" && parsed.Hostname() != "127.0.0.1" {
		log.Printf("Warning: Configured RedirectURL is not a localhost callback or OOB: %s. Ensure this is correct for your setup.", redirect)
		return redirect
	}
	if parsed.Port() != "" && parsed.Port() != LocalhostAuthPort {
		log.Printf("Warning: credentials redirect port '%s' replaced by '%s'", parsed.Port(), LocalhostAuthPort)
	}
	parsed.Host = net.JoinHostPort(parsed.Hostname(), LocalhostAuthPort)
	return parsed.String()
}

// GetClient returns an authenticated *http.Client. Service account keys
// are used directly; OAuth client secrets go through a cached token,
// falling back to the browser flow when no token exists.
func GetClient(ctx context.Context, credentialsFile string, scopes []string) (*http.Client, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file %s: %w", credentialsFile, err)
	}
	if IsServiceAccount(b) {
		creds, err := google.CredentialsFromJSON(ctx, b, scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return oauth2.NewClient(ctx, creds.TokenSource), nil
	}

	cfg, err := GetConfig(credentialsFile, scopes)
	if err != nil {
		return nil, err
	}

	tokenFile, err := TokenPath()
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		log.Printf("No existing token found at %s. Initiating web authorization flow...", tokenFile)
		tok, err = getTokenFromWeb(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	// Refreshed tokens are written back so the next run starts from them.
	src := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenFile,
		last: tok,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := saveToken(s.path, tok); err != nil {
			log.Printf("Warning: Could not save refreshed token: %v", err)
		}
		s.last = tok
	}
	return tok, nil
}

// getTokenFromWeb runs the authorization code flow through a local web
// server that captures the redirect.
func getTokenFromWeb(cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Printf("Local server listening on %s for OAuth2 redirect...", cfg.RedirectURL)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// AccessTypeOffline is what makes Google return a refresh token.
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Please open the following URL in your browser to authorize backlog:\n%s\n", authURL)
	log.Println("Waiting for authorization code...")

	select {
	case authCode := <-codeCh:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(ctx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		server.Shutdown(ctx)
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		server.Shutdown(context.Background())
		return nil, fmt.Errorf("authorization timed out. Please try again")
	}
}

// TokenPath returns the cached token location.
func TokenPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TokenFile), nil
}

// ResetToken removes the cached token so the next GetClient asks again.
func ResetToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete token file '%s': %w", path, err)
	}
	return nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	log.Printf("Saving authentication token to: %s", path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// GetSheetsService creates an authenticated Google Sheets service.
func GetSheetsService(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	client, err := GetClient(ctx, credentialsFile, Scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Sheets API: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Sheets service: %w", err)
	}
	return srv, nil
}
