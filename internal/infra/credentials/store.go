package credentials

import (
	"context"
	"errors"
	"strings"

	"voicebot/internal/infra"
	"voicebot/internal/sqlinline"
)

const (
	ProviderSilero = "silero"
)

// Store keeps third-party API tokens in the database so rotating a key does
// not require redeploying the service.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) SileroAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderSilero)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetSileroAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderSilero, key)
}

func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return errors.New("provider is required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token)
	return err
}
