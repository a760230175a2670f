package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// SessionUseCase owns the process-wide session and is the only writer of the persisted token.
type SessionUseCase struct {
	apiRepo   repository.MetricsAPIRepository
	tokenRepo repository.TokenRepository
	console   types.ConsoleInterface

	mu      sync.RWMutex
	session entity.Session
}

// NewSessionUseCase creates a new session use case with an empty session.
func NewSessionUseCase(
	apiRepo repository.MetricsAPIRepository,
	tokenRepo repository.TokenRepository,
	console types.ConsoleInterface,
) *SessionUseCase {
	return &SessionUseCase{
		apiRepo:   apiRepo,
		tokenRepo: tokenRepo,
		console:   console,
	}
}

// Current returns a copy of the session.
func (uc *SessionUseCase) Current() entity.Session {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.session
}

// Restore validates a persisted token against the API.
// A rejected token is cleared and yields an empty session without error.
// Other failures keep the token and return the error.
func (uc *SessionUseCase) Restore(ctx context.Context) (entity.Session, error) {
	token, err := uc.tokenRepo.Load()
	if err != nil {
		uc.setSession(entity.Session{})
		return entity.Session{}, fmt.Errorf("error reading stored session: %w", err)
	}
	if token == "" {
		uc.setSession(entity.Session{})
		return entity.Session{}, nil
	}

	user, err := uc.apiRepo.CurrentUser(ctx, token)
	if err != nil {
		uc.setSession(entity.Session{})
		if errors.Is(err, types.ErrUnauthorized) {
			uc.console.LogDebug("Stored token rejected: %s", err)
			uc.clearToken()
			return entity.Session{}, nil
		}
		return entity.Session{}, fmt.Errorf("could not validate stored session: %w", err)
	}

	s := entity.Session{Token: token, User: &user}
	uc.setSession(s)
	return s, nil
}

// Login exchanges credentials for a token and persists it.
// On failure the session stays empty and the server message is returned as is.
func (uc *SessionUseCase) Login(ctx context.Context, email, password string) (entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return entity.Session{}, errors.New("email and password are required")
	}

	res, err := uc.apiRepo.Login(ctx, email, password)
	if err != nil {
		uc.setSession(entity.Session{})
		return entity.Session{}, err
	}

	if err := uc.tokenRepo.Save(res.AccessToken); err != nil {
		uc.console.LogWarning("Could not persist session token: %s", err)
	}

	user := res.User
	s := entity.Session{Token: res.AccessToken, User: &user}
	uc.setSession(s)
	return s, nil
}

// Logout clears the persisted token and the session. It never fails.
func (uc *SessionUseCase) Logout() {
	uc.clearToken()
	uc.setSession(entity.Session{})
}

// HandleUnauthorized ends a session the API no longer accepts.
func (uc *SessionUseCase) HandleUnauthorized() {
	uc.Logout()
}

func (uc *SessionUseCase) clearToken() {
	if err := uc.tokenRepo.Clear(); err != nil {
		uc.console.LogWarning("Could not remove stored session token: %s", err)
	}
}

func (uc *SessionUseCase) setSession(s entity.Session) {
	uc.mu.Lock()
	uc.session = s
	uc.mu.Unlock()
}
