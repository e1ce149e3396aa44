// Package otp lưu mã đặt lại mật khẩu trong Redis với TTL.
// Key dạng otp:<type>:<email>; ghi đè là thay thế mã cũ, dùng xong thì xóa.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bookmyhall-api-server/config"

	"github.com/redis/go-redis/v9"
)

// TTL của một mã OTP.
const TTL = 5 * time.Minute

// Loại tài khoản mà OTP áp dụng.
const (
	TypeUser = "user"
	TypeHall = "hall"
)

var (
	ErrNotFound    = errors.New("otp not found or expired")
	ErrMismatch    = errors.New("otp does not match")
	ErrUnavailable = errors.New("otp store unavailable")
)

type Store struct {
	client *redis.Client
}

// NewStore tạo Redis client và ping với timeout ngắn. Trả về store với
// client nil nếu Redis không kết nối được; các thao tác sau đó trả
// ErrUnavailable thay vì panic.
func NewStore(cfg config.RedisConfig) *Store {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &Store{client: nil}
	}
	return &Store{client: client}
}

func key(accountType, email string) string {
	return fmt.Sprintf("otp:%s:%s", accountType, email)
}

// GenerateCode sinh mã 6 chữ số.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Put ghi mã cho (type, email), thay thế mã cũ nếu có.
func (s *Store) Put(ctx context.Context, accountType, email, code string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	return s.client.Set(ctx, key(accountType, email), code, TTL).Err()
}

// Verify so khớp mã và xóa ngay khi đúng (single-use).
func (s *Store) Verify(ctx context.Context, accountType, email, code string) error {
	if s.client == nil {
		return ErrUnavailable
	}
	stored, err := s.client.Get(ctx, key(accountType, email)).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrMismatch
	}
	return s.client.Del(ctx, key(accountType, email)).Err()
}
