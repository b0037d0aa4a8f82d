package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/granary/granary/internal/shared"
)

// TokenManager issues and resolves opaque bearer tokens backed by Redis.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

func tokenKey(token string) string {
	return "granary:token:" + token
}

// Issue mints a fresh token for the user.
func (tm *TokenManager) Issue(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: token entropy: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := tm.client.Set(ctx, tokenKey(token), strconv.FormatInt(userID, 10), tm.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Resolve maps a bearer token back to a user id. Unknown or expired tokens
// resolve to ErrUnauthorized.
func (tm *TokenManager) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, shared.ErrUnauthorized
	}
	raw, err := tm.client.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrUnauthorized
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shared.ErrUnauthorized
	}
	// Sliding expiry keeps active sessions alive.
	tm.client.Expire(ctx, tokenKey(token), tm.ttl)
	return userID, nil
}

// Revoke invalidates a token.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	return tm.client.Del(ctx, tokenKey(token)).Err()
}
