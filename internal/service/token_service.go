package service

import (
	"time"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/security"
)

// TokenService mints and validates session tokens. Tokens are stateless
// HMAC-signed JWTs; there is no server-side session record to revoke.
type TokenService struct {
	cfg    *config.Config
	tokens *security.TokenManager
}

func NewTokenService(cfg *config.Config, tokens *security.TokenManager) *TokenService {
	return &TokenService{cfg: cfg, tokens: tokens}
}

func (s *TokenService) Issue(userID uint) (string, time.Time, error) {
	token, err := s.tokens.Sign(userID, s.cfg.SessionTokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().UTC().Add(s.cfg.SessionTokenTTL), nil
}

func (s *TokenService) ParseUserID(raw string) (uint, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}
