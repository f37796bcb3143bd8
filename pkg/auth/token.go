// Package auth issues and validates participant tokens. A token binds a
// participant identity to one session; it is minted when the session is
// created or joined and presented on every subsequent request.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"retro-backend/domain/authz"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

const defaultTokenTTL = 24 * time.Hour

// Claims are the JWT claims of a participant token.
type Claims struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	Moderator     bool   `json:"moderator"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies participant tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a token service. An empty secret is rejected at
// wiring time, not here.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    defaultTokenTTL,
	}
}

// Issue mints a token for the participant within the session.
func (s *TokenService) Issue(sessionID valueobjects.SessionID, participantID valueobjects.ParticipantID, moderator bool) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID:     sessionID.String(),
		ParticipantID: participantID.String(),
		Moderator:     moderator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   participantID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the token and returns the actor it identifies.
func (s *TokenService) Validate(tokenString string) (authz.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return authz.Actor{}, errors.NewUnauthorizedError("invalid or expired token")
	}

	sessionID, err := valueobjects.NewSessionIDFromString(claims.SessionID)
	if err != nil {
		return authz.Actor{}, errors.NewUnauthorizedError("invalid or expired token")
	}
	participantID, err := valueobjects.NewParticipantIDFromString(claims.ParticipantID)
	if err != nil {
		return authz.Actor{}, errors.NewUnauthorizedError("invalid or expired token")
	}

	return authz.Actor{
		SessionID:     sessionID,
		ParticipantID: participantID,
		IsModerator:   claims.Moderator,
	}, nil
}
