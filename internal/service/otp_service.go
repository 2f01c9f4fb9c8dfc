package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/security"
)

var (
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidOTP covers every verification failure: wrong code, expired
	// code, already-used code, unknown email. Callers must not distinguish
	// between them.
	ErrInvalidOTP = errors.New("invalid or expired passcode")
)

type OTPService struct {
	cfg          *config.Config
	passcodeRepo repository.PasscodeRepository
	userRepo     repository.UserRepository
	tokenSvc     *TokenService
	mailer       Mailer
	logger       *slog.Logger
	now          func() time.Time
}

type VerifyResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func NewOTPService(
	cfg *config.Config,
	passcodeRepo repository.PasscodeRepository,
	userRepo repository.UserRepository,
	tokenSvc *TokenService,
	mailer Mailer,
	logger *slog.Logger,
) *OTPService {
	return &OTPService{
		cfg:          cfg,
		passcodeRepo: passcodeRepo,
		userRepo:     userRepo,
		tokenSvc:     tokenSvc,
		mailer:       mailer,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh passcode for the address, persists it, and hands
// it to the mailer on a separate goroutine. Delivery failures are logged,
// never surfaced: the caller gets success as soon as the record exists, and
// a failed send looks the same to the client as an unclaimed code.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		observability.RecordOTPIssued(ctx, "invalid_email")
		return err
	}

	code, err := security.NewNumericCode(s.cfg.OTPCodeLength)
	if err != nil {
		observability.RecordOTPIssued(ctx, "error")
		return fmt.Errorf("generate passcode: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.OTPCodeTTL)
	passcode := &domain.Passcode{Email: email, Code: code, ExpiresAt: expiresAt}
	if err := s.passcodeRepo.Create(passcode); err != nil {
		observability.RecordOTPIssued(ctx, "error")
		return fmt.Errorf("store passcode: %w", err)
	}

	go s.deliver(PasscodeMessage{Email: email, Code: code, ExpiresAt: expiresAt})

	observability.RecordOTPIssued(ctx, "issued")
	return nil
}

func (s *OTPService) deliver(msg PasscodeMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.mailer.SendPasscode(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "passcode delivery failed", "email", msg.Email, "error", err)
	}
}

// Verify consumes the passcode and signs a session token for the matching
// user, creating the account on first login. The consume is a single
// conditional delete, so two concurrent attempts with the same code can
// never both succeed.
func (s *OTPService) Verify(ctx context.Context, email, code string) (*VerifyResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		observability.RecordOTPVerification(ctx, "invalid_email")
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		observability.RecordOTPVerification(ctx, "rejected")
		return nil, ErrInvalidOTP
	}

	if !s.bypassMatches(code) {
		consumed, err := s.passcodeRepo.ConsumeMatching(email, code, s.now())
		if err != nil {
			observability.RecordOTPVerification(ctx, "error")
			return nil, fmt.Errorf("consume passcode: %w", err)
		}
		if !consumed {
			observability.RecordOTPVerification(ctx, "rejected")
			return nil, ErrInvalidOTP
		}
	}

	user, err := s.findOrCreateUser(email)
	if err != nil {
		observability.RecordOTPVerification(ctx, "error")
		return nil, err
	}

	token, expiresAt, err := s.tokenSvc.Issue(user.ID)
	if err != nil {
		observability.RecordOTPVerification(ctx, "error")
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	observability.RecordOTPVerification(ctx, "verified")
	return &VerifyResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *OTPService) bypassMatches(code string) bool {
	return s.cfg.AuthOTPBypassEnabled && s.cfg.AuthOTPBypassCode != "" && code == s.cfg.AuthOTPBypassCode
}

func (s *OTPService) findOrCreateUser(email string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user = &domain.User{Email: email}
	if err := s.userRepo.Create(user); err != nil {
		// A concurrent first login may have created the row between the
		// lookup and the insert. Re-read before giving up.
		if existing, findErr := s.userRepo.FindByEmail(email); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// PurgeExpired removes passcodes whose lifetime has lapsed. Expiry is
// already enforced at consume time; this keeps the table from growing
// unbounded.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.passcodeRepo.DeleteExpired(s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired passcodes: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired passcodes", "count", n)
	}
	return n, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", ErrInvalidEmail
	}
	// ParseAddress also accepts name-addr forms like "Bob <bob@x.com>".
	// Only bare addresses may reach the users table.
	if addr.Address != email {
		return "", ErrInvalidEmail
	}
	return addr.Address, nil
}
