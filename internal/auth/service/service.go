package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"teranga/internal/auth/metrics"
	"teranga/internal/auth/models"
	"teranga/internal/auth/password"
	jwttoken "teranga/internal/jwt_token"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/email"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/sentinel"
	"teranga/pkg/requestcontext"
)

var tracer = otel.Tracer("teranga/auth")

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	MarkVerified(ctx context.Context, userID id.UserID, at time.Time) error
}

type CodeStore interface {
	Save(ctx context.Context, email string, code models.VerificationCode, ttl time.Duration) error
	Find(ctx context.Context, email string) (*models.VerificationCode, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (*jwttoken.AccessToken, error)
}

type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Config struct {
	AccessTokenTTL      time.Duration
	VerificationCodeTTL time.Duration
}

// Service signs buyers up, verifies their email and issues access tokens.
type Service struct {
	users   UserStore
	codes   CodeStore
	tokens  TokenIssuer
	revoker TokenRevoker
	sender  CodeSender
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	newCode func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithCodeGenerator replaces the random six-digit generator.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newCode = fn
	}
}

func New(users UserStore, codes CodeStore, tokens TokenIssuer, revoker TokenRevoker, sender CodeSender, cfg Config, opts ...Option) *Service {
	s := &Service{
		users:   users,
		codes:   codes,
		tokens:  tokens,
		revoker: revoker,
		sender:  sender,
		cfg:     cfg,
		logger:  slog.Default(),
		newCode: randomCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SignUp creates an unverified account and mails a verification code.
// Signing up again with an unverified email resends the code.
func (s *Service) SignUp(ctx context.Context, req models.Credentials) (*models.SignUpResult, error) {
	ctx, span := tracer.Start(ctx, "auth.SignUp")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Verified:
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	case err == nil:
		if err := s.issueCode(ctx, existing, false); err != nil {
			return nil, err
		}
		return &models.SignUpResult{UserID: existing.ID, Email: existing.Email, VerificationRequired: true}, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		span.SetStatus(codes.Error, "find user")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		span.SetStatus(codes.Error, "create user")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	s.metrics.IncrementSignUps()
	s.emit(ctx, user.ID, audit.EventUserCreated, "")

	if err := s.issueCode(ctx, user, false); err != nil {
		return nil, err
	}
	return &models.SignUpResult{UserID: user.ID, Email: user.Email, VerificationRequired: true}, nil
}

// SignIn refuses unknown emails and wrong passwords with the same error.
func (s *Service) SignIn(ctx context.Context, req models.Credentials) (*models.TokenResult, error) {
	ctx, span := tracer.Start(ctx, "auth.SignIn")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementSignIns("unknown_email")
		return nil, invalid
	}
	if err != nil {
		span.SetStatus(codes.Error, "find user")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := password.Verify(req.Password, user.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.metrics.IncrementSignIns("bad_password")
			s.emit(ctx, user.ID, audit.EventAuthFailed, "")
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !user.Verified {
		s.metrics.IncrementSignIns("unverified")
		return nil, dErrors.New(dErrors.CodeForbidden, "email not verified")
	}

	result, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementSignIns("success")
	s.emit(ctx, user.ID, audit.EventUserSignedIn, "")
	return result, nil
}

// SignOut revokes the presented token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, userID id.UserID, jti string) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token has no id")
	}
	if err := s.revoker.RevokeToken(ctx, jti, s.cfg.AccessTokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.emit(ctx, userID, audit.EventUserSignedOut, "")
	return nil
}

// ResendCode is silent for unknown emails so it cannot be used to enumerate accounts.
func (s *Service) ResendCode(ctx context.Context, rawEmail string) error {
	ctx, span := tracer.Start(ctx, "auth.ResendCode")
	defer span.End()

	addr := models.NormalizeEmail(rawEmail)
	if err := models.ValidateEmail(addr); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		span.SetStatus(codes.Error, "find user")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user.Verified {
		return dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}
	if err := s.issueCode(ctx, user, true); err != nil {
		return err
	}
	s.emit(ctx, user.ID, audit.EventVerificationResent, "")
	return nil
}

// Verify checks the emailed code. Three wrong guesses burn the code. A
// correct code verifies the account and signs the user in.
func (s *Service) Verify(ctx context.Context, req models.VerifyRequest) (*models.TokenResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Verify")
	defer span.End()

	addr := models.NormalizeEmail(req.Email)
	if err := models.ValidateEmail(addr); err != nil {
		return nil, err
	}
	if req.Code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "code is required")
	}
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid or expired verification code")

	user, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		span.SetStatus(codes.Error, "find user")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user.Verified {
		return nil, dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}

	stored, err := s.codes.Find(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementVerifications("expired")
		return nil, invalid
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(req.Code)) != 1 {
		return nil, s.rejectCode(ctx, user, invalid)
	}

	now := requestcontext.Now(ctx)
	if err := s.users.MarkVerified(ctx, user.ID, now); err != nil {
		span.SetStatus(codes.Error, "mark verified")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify user")
	}
	if err := s.codes.Delete(ctx, addr); err != nil {
		s.logger.WarnContext(ctx, "failed to delete used verification code", "error", err)
	}
	s.metrics.IncrementVerifications("success")
	s.emit(ctx, user.ID, audit.EventUserVerified, "")
	return s.issueToken(user.ID)
}

func (s *Service) rejectCode(ctx context.Context, user *models.User, invalid error) error {
	s.metrics.IncrementVerifications("mismatch")
	s.emit(ctx, user.ID, audit.EventVerificationFailed, "")

	attempts, err := s.codes.IncrementAttempts(ctx, user.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification attempt")
	}
	if attempts >= models.MaxVerifyAttempts {
		if err := s.codes.Delete(ctx, user.Email); err != nil {
			s.logger.WarnContext(ctx, "failed to burn verification code", "error", err)
		}
		return dErrors.New(dErrors.CodeRateLimited, "too many attempts, request a new code")
	}
	return invalid
}

// Me returns the signed-in account with a display name derived from the email.
func (s *Service) Me(ctx context.Context, userID id.UserID) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	first, last := email.NameParts(user.Email)
	return &models.UserInfo{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: first,
		LastName:  last,
		Verified:  user.Verified,
	}, nil
}

// issueCode stores and sends a fresh code. With enforceCooldown a code
// younger than ResendCooldown is refused.
func (s *Service) issueCode(ctx context.Context, user *models.User, enforceCooldown bool) error {
	now := requestcontext.Now(ctx)
	if enforceCooldown {
		current, err := s.codes.Find(ctx, user.Email)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
		}
		if current != nil && now.Sub(current.IssuedAt) < models.ResendCooldown {
			return dErrors.New(dErrors.CodeRateLimited, "please wait before requesting a new code")
		}
	}

	code, err := s.newCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}
	if err := s.codes.Save(ctx, user.Email, models.VerificationCode{Code: code, IssuedAt: now}, s.cfg.VerificationCodeTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification code")
	}
	if err := s.sender.SendVerificationCode(ctx, user.Email, code); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send verification code")
	}
	s.metrics.IncrementCodesIssued()
	return nil
}

func (s *Service) issueToken(userID id.UserID) (*models.TokenResult, error) {
	token, err := s.tokens.GenerateAccessToken(userID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return &models.TokenResult{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) emit(ctx context.Context, userID id.UserID, action audit.AuditEvent, subject string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{UserID: userID, Subject: subject, Action: string(action)})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
