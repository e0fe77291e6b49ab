package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizflow/internal/config"
)

const (
	keyLoginIP    = "auth:login:ip:%s"
	keyLoginEmail = "auth:login:email:%s"
	keySignupIP   = "auth:signup:ip:%s"
	keyVerifyLock = "payment:verify:lock:%s"
	verifyLockTTL = 30 * time.Second
	loginRate     = 0.2
	loginBurst    = 5
	signupRate    = 0.05
	signupBurst   = 3
	loginIPRate   = 1.0
	loginIPBurst  = 20
)

// AuthLimiter throttles credential guessing and account churn. With no
// Redis configured it is disabled and allows everything.
type AuthLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker
}

func NewAuthLimiter(cfg config.Config) *AuthLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &AuthLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &AuthLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
	}
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowLogin gates a sign-in attempt on both the source address and the
// target account. Redis failures fail open.
func (l *AuthLimiter) AllowLogin(ctx context.Context, ip, email string) bool {
	if !l.Enabled() {
		return true
	}
	if ip != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, ip), loginIPRate, loginIPBurst)
		if err == nil && !res.Allowed {
			return false
		}
	}
	if email != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginEmail, strings.ToLower(email)), loginRate, loginBurst)
		if err == nil && !res.Allowed {
			return false
		}
	}
	return true
}

func (l *AuthLimiter) AllowSignup(ctx context.Context, ip string) bool {
	if !l.Enabled() || ip == "" {
		return true
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keySignupIP, ip), signupRate, signupBurst)
	if err != nil {
		return true
	}
	return res.Allowed
}

// TryVerifyLock serializes gateway verification for one reference so a
// double-submitted callback cannot settle a payment twice.
func (l *AuthLimiter) TryVerifyLock(ctx context.Context, reference string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyVerifyLock, reference), verifyLockTTL)
}

func (l *AuthLimiter) ReleaseVerifyLock(ctx context.Context, reference, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyVerifyLock, reference), token)
}
