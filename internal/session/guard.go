package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Guard owns the operator's persisted session token and decides whether it
// still authenticates. The token lives in a single file; a malformed or
// expired stored token is handled exactly like an absent one.
type Guard struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	token  string
}

// New restores the session from the token file at path. Restore failures are
// logged, never returned: the guard just starts unauthenticated.
func New(path string, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Guard{path: path, logger: logger}
	g.restore()

	return g
}

func (g *Guard) restore() {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			g.logger.Debug("reading stored token", zap.Error(err))
		}
		return
	}

	token := strings.TrimSpace(string(data))
	if err := Validate(token, time.Now()); err != nil {
		g.logger.Info("discarding stored token", zap.Error(err))
		g.discard()
		return
	}

	g.token = token
}

// Validate inspects the token's payload without verifying its signature and
// reports why it cannot authenticate the operator. The backend stays the
// authority on signatures; the client only checks the expiry claim.
func Validate(token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("decoding token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return errors.New("token carries no expiry claim")
	}

	if !claims.ExpiresAt.After(now) {
		return errors.New("token is expired")
	}

	return nil
}

func (g *Guard) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.token != ""
}

// Token implements hrbackend.TokenSource.
func (g *Guard) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.token
}

// Login persists the token and flips the guard to authenticated.
func (g *Guard) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}

	if dir := filepath.Dir(g.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating token directory: %w", err)
		}
	}

	if err := os.WriteFile(g.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()

	return nil
}

// Logout discards the token and flips the guard to unauthenticated.
func (g *Guard) Logout() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()

	g.discard()
}

func (g *Guard) discard() {
	if err := os.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.logger.Warn("removing token file", zap.Error(err))
	}
}
