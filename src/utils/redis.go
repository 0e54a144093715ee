package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const OAuthStateTTL = 10 * time.Minute

// TokenStore blacklist ของ access token และ state ของ OAuth
// client = nil (dev ไม่มี Redis) ทุก method เป็น no-op
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Enabled() bool {
	return s != nil && s.client != nil
}

// BlacklistToken เพิ่ม access token เข้า blacklist (ใช้ตอน logout)
func (s *TokenStore) BlacklistToken(ctx context.Context, token string, expiresIn time.Duration) error {
	if !s.Enabled() || expiresIn <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, "blacklist:"+token, "1", expiresIn).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %v", err)
	}
	return nil
}

// IsTokenBlacklisted ไม่มี Redis = ไม่มี blacklist
func (s *TokenStore) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	err := s.client.Get(ctx, "blacklist:"+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %v", err)
	}
	return true, nil
}

// SaveOAuthState เก็บ state ที่ส่งไป Google
func (s *TokenStore) SaveOAuthState(ctx context.Context, state string) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Set(ctx, "oauth_state:"+state, "1", OAuthStateTTL).Err()
}

// ConsumeOAuthState ใช้ได้ครั้งเดียว; ไม่มี Redis = ข้ามการตรวจ
func (s *TokenStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}
	n, err := s.client.Del(ctx, "oauth_state:"+state).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check oauth state: %v", err)
	}
	return n == 1, nil
}
