// Package jwtmw provides JWT token issuance and validation middleware.
package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim names carried by issued tokens.
const (
	ClaimGuid  = "guid"
	ClaimLogin = "login"
)

// Generator defines the interface for token pair issuance and refresh validation.
type Generator interface {
	// GeneratePair creates a signed access/refresh token pair for the given user.
	GeneratePair(userGuid uuid.UUID, login string) (accessToken, refreshToken string, err error)

	// ParseRefresh validates a refresh token and returns the user guid it names.
	ParseRefresh(token string) (uuid.UUID, error)
}

// generator implements the Generator interface.
// Both tokens are signed with the same symmetric key using HS256.
type generator struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewGenerator creates a new token generator.
// accessTTL is the short access token lifetime, refreshTTL the longer
// refresh token lifetime.
func NewGenerator(secret, issuer string, accessTTL, refreshTTL time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GeneratePair creates the signed token pair.
// The access token carries the guid and login claims; the refresh token
// carries the guid only. Both are issued with nbf set to the issuance instant.
func (g *generator) GeneratePair(userGuid uuid.UUID, login string) (string, string, error) {
	now := time.Now().UTC()

	accessClaims := jwt.MapClaims{
		ClaimGuid:  userGuid.String(),
		ClaimLogin: login,
		"iss":      g.issuer,
		"nbf":      now.Unix(),
		"iat":      now.Unix(),
		"exp":      now.Add(g.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(g.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		ClaimGuid: userGuid.String(),
		"nbf":     now.Unix(),
		"iat":     now.Unix(),
		"exp":     now.Add(g.refreshTTL).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(g.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return access, refresh, nil
}

// ParseRefresh validates the refresh token signature, lifetime and signing
// algorithm, then extracts the guid claim.
func (g *generator) ParseRefresh(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid refresh token claims")
	}
	guidStr, ok := claims[ClaimGuid].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("refresh token has no %s claim", ClaimGuid)
	}
	guid, err := uuid.Parse(guidStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", ClaimGuid, err)
	}
	return guid, nil
}
