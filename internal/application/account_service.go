package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
)

var ErrActivationTokenRequired = errors.New("activation token is required")

// AccountService handles sign-up. Sign-in lives on SessionStore.
type AccountService struct {
	api ports.AuthAPI
}

func NewAccountService(api ports.AuthAPI) *AccountService {
	return &AccountService{api: api}
}

func (s *AccountService) Register(ctx context.Context, input domain.RegisterInput) error {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.api.Register(ctx, input); err != nil {
		return fmt.Errorf("register %s: %w", input.Email, err)
	}
	return nil
}

func (s *AccountService) Activate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrActivationTokenRequired
	}
	if err := s.api.Activate(ctx, token); err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	return nil
}
