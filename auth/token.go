// Package auth manages the access token for the Baidu AI platform.
//
// Tokens are obtained with the OAuth client-credentials grant and cached in
// plain-text files. Validity is only "non-empty": there is no expiry
// tracking, and load-then-fetch is not atomic across processes.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"chat-analyzer/utils"
)

var (
	// ErrAuth is returned when the token endpoint refuses to issue a token
	ErrAuth = errors.New("failed to retrieve access token")
	// ErrEmptyToken is returned when saving an empty token
	ErrEmptyToken = errors.New("no access token available to save")
	// ErrNoRefreshToken is returned when the refresh token file is missing
	ErrNoRefreshToken = errors.New("no refresh token file found")
)

// Config holds everything the store needs; nothing is baked in
type Config struct {
	APIKey           string
	SecretKey        string
	TokenURL         string
	AccessTokenPath  string
	RefreshTokenPath string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

// Store fetches, persists and reloads access tokens
type Store struct {
	config Config
	client *http.Client
	logger *utils.Logger
}

// NewStore creates a credential store
func NewStore(config Config, logger *utils.Logger) *Store {
	if config.AccessTokenPath == "" {
		config.AccessTokenPath = "access_token.txt"
	}
	if config.RefreshTokenPath == "" {
		config.RefreshTokenPath = "refresh_token.txt"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Store{
		config: config,
		client: client,
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// FetchNewToken requests a fresh token with the client-credentials grant
func (s *Store) FetchNewToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "client_credentials")
	params.Set("client_id", s.config.APIKey)
	params.Set("client_secret", s.config.SecretKey)

	token, err := s.requestToken(ctx, params)
	if err != nil {
		return "", err
	}
	s.logger.Info("New access token retrieved")
	return token, nil
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and saves it
func (s *Store) RefreshAccessToken(ctx context.Context) (string, error) {
	refreshToken, ok, err := Load(s.config.RefreshTokenPath)
	if err != nil {
		return "", err
	}
	if !ok || !IsValid(refreshToken) {
		return "", fmt.Errorf("%w: %s", ErrNoRefreshToken, s.config.RefreshTokenPath)
	}

	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", refreshToken)
	params.Set("client_id", s.config.APIKey)
	params.Set("client_secret", s.config.SecretKey)

	token, err := s.requestToken(ctx, params)
	if err != nil {
		return "", err
	}
	if err := Save(s.config.AccessTokenPath, token); err != nil {
		return "", err
	}
	s.logger.Info("Access token refreshed successfully")
	return token, nil
}

// requestToken POSTs the grant parameters as a query string, which is how
// the Baidu token endpoint expects them
func (s *Store) requestToken(ctx context.Context, params url.Values) (string, error) {
	endpoint, err := url.Parse(s.config.TokenURL)
	if err != nil {
		return "", fmt.Errorf("invalid token URL: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("Requesting token from %s (grant_type=%s)", s.config.TokenURL, params.Get("grant_type"))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var tokenResp tokenResponse
	// A non-JSON error page still has to surface as ErrAuth below
	_ = json.Unmarshal(body, &tokenResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s %s", ErrAuth, resp.StatusCode, tokenResp.Error, tokenResp.ErrorDescription)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: response carried no access_token: %s", ErrAuth, tokenResp.ErrorDescription)
	}

	if tokenResp.RefreshToken != "" {
		if err := Save(s.config.RefreshTokenPath, tokenResp.RefreshToken); err != nil {
			s.logger.Warn("Failed to save refresh token: %v", err)
		}
	}

	return tokenResp.AccessToken, nil
}

// LoadOrFetch returns the cached token. When the file is absent or holds an
// invalid token it tries the refresh token first, then the
// client-credentials grant, and saves the result.
func (s *Store) LoadOrFetch(ctx context.Context) (string, error) {
	token, ok, err := Load(s.config.AccessTokenPath)
	if err != nil {
		s.logger.Warn("Failed to load access token: %v", err)
	}
	if ok && IsValid(token) {
		s.logger.Info("Access token loaded from %s", s.config.AccessTokenPath)
		return token, nil
	}

	if utils.FileExists(s.config.RefreshTokenPath) {
		token, err := s.RefreshAccessToken(ctx)
		if err == nil {
			return token, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn("Failed to refresh access token, requesting a new one: %v", err)
	}

	s.logger.Info("No usable access token at %s, authenticating", s.config.AccessTokenPath)
	token, err = s.FetchNewToken(ctx)
	if err != nil {
		return "", err
	}
	if err := Save(s.config.AccessTokenPath, token); err != nil {
		return "", err
	}
	s.logger.Info("Access token saved to %s", s.config.AccessTokenPath)
	return token, nil
}

// Load reads a token from path. A missing file is reported as absent, not
// as an error.
func Load(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Save overwrites path with token
func Save(path, token string) error {
	if !IsValid(token) {
		return ErrEmptyToken
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// IsValid reports whether token is usable. Only emptiness is checked.
func IsValid(token string) bool {
	return strings.TrimSpace(token) != ""
}
