package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound means no pending confirmation code exists for the email,
// either never requested or expired.
var ErrCodeNotFound = errors.New("confirmation code not found")

// OTPRepository stores bcrypt-hashed confirmation codes keyed by email, with
// a TTL so stale codes expire on their own.
type OTPRepository interface {
	Save(ctx context.Context, email, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type otpRepository struct {
	client *redis.Client
}

func NewOTPRepository(client *redis.Client) OTPRepository {
	return &otpRepository{client: client}
}

func otpKey(email string) string {
	return "otp:" + email
}

func (r *otpRepository) Save(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	return r.client.Set(ctx, otpKey(email), codeHash, ttl).Err()
}

func (r *otpRepository) Get(ctx context.Context, email string) (string, error) {
	hash, err := r.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (r *otpRepository) Delete(ctx context.Context, email string) error {
	return r.client.Del(ctx, otpKey(email)).Err()
}
