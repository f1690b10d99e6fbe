package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/jwt"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 3
)

// OTPSender delivers a login code to a resident. The default
// implementation only logs; email delivery plugs in behind it.
type OTPSender interface {
	Send(ctx context.Context, email, code string) error
}

type logOTPSender struct{}

func (logOTPSender) Send(_ context.Context, email, code string) error {
	logger.Info("OTP for %s: %s", email, code)
	return nil
}

// AuthService implements passwordless email OTP login
type AuthService struct {
	userRepo   repository.UserRepository
	redis      *redis.Client
	jwtManager *jwt.Manager
	sender     OTPSender
	otpPerHour int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, redisClient *redis.Client, jwtManager *jwt.Manager, otpPerHour int) *AuthService {
	if otpPerHour <= 0 {
		otpPerHour = 5
	}
	return &AuthService{
		userRepo:   userRepo,
		redis:      redisClient,
		jwtManager: jwtManager,
		sender:     logOTPSender{},
		otpPerHour: otpPerHour,
	}
}

// SetOTPSender replaces the code delivery mechanism (optional dependency)
func (s *AuthService) SetOTPSender(sender OTPSender) {
	s.sender = sender
}

func otpKey(email string) string         { return "otp:code:" + email }
func otpAttemptsKey(email string) string { return "otp:attempts:" + email }
func otpRateKey(email string) string     { return "otp:rate:" + email }

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendOTP generates a six digit code, stores only its hash, and hands
// the plaintext to the delivery backend. Requests beyond the hourly
// cap are rejected.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	count, err := s.redis.Incr(ctx, otpRateKey(email)).Result()
	if err != nil {
		return fmt.Errorf("failed to check OTP rate limit: %w", err)
	}
	if count == 1 {
		s.redis.Expire(ctx, otpRateKey(email), time.Hour)
	}
	if count > int64(s.otpPerHour) {
		return common.ErrRateLimitExceeded
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, otpKey(email), hashCode(code), otpTTL)
	pipe.Del(ctx, otpAttemptsKey(email))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return s.sender.Send(ctx, email, code)
}

// VerifyOTP checks a submitted code against the stored hash and issues
// a JWT on success. Three wrong attempts invalidate the code.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.AuthResponse, error) {
	stored, err := s.redis.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load OTP: %w", err)
	}

	attempts, err := s.redis.Incr(ctx, otpAttemptsKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count OTP attempts: %w", err)
	}
	if attempts == 1 {
		s.redis.Expire(ctx, otpAttemptsKey(email), otpTTL)
	}
	if attempts > otpMaxAttempts {
		s.redis.Del(ctx, otpKey(email))
		return nil, common.ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return nil, common.ErrInvalidOTP
	}

	// Code accepted: single use
	s.redis.Del(ctx, otpKey(email), otpAttemptsKey(email))

	user, err := s.userRepo.FindByEmail(email)
	if errors.Is(err, common.ErrUserNotFound) {
		user = &domain.User{
			ID:    uuid.New().String(),
			Email: email,
			Role:  domain.RoleResident,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.AuthResponse{Token: token, User: user}, nil
}
