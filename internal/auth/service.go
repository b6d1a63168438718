package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	userdm "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/core/events"
)

// Repository abstracts credential and reset-token persistence.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*CredentialRecord, error)
	GetUserByID(ctx context.Context, id int64) (*CredentialRecord, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string, mustChange bool) error
	ActivateUser(ctx context.Context, userID int64, passwordHash string) error
	MarkInviteExpired(ctx context.Context, userID int64) error

	CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, token string) (*ResetTokenRecord, error)
	MarkTokenUsed(ctx context.Context, tokenID int64) error
	ExpireStaleInvites(ctx context.Context, olderThan time.Time) (int64, error)
}

// CredentialRecord is the user row plus the joined employee id, enough to
// authenticate and to build the context principal.
type CredentialRecord struct {
	ID                 int64
	Email              string
	Name               string
	PasswordHash       string
	Role               string
	IsActive           bool
	InviteStatus       string
	InvitedAt          *time.Time
	MustChangePassword bool
	EmployeeID         *int64
}

type ResetTokenRecord struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       Repository
	tokens     *JWTTokenGenerator
	eventBus   EventPublisher
	bcryptCost int
	resetTTL   time.Duration
	inviteTTL  time.Duration
	logger     *slog.Logger
}

func NewService(repo Repository, tokens *JWTTokenGenerator, eventBus EventPublisher, bcryptCost int, resetTTL, inviteTTL time.Duration, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		eventBus:   eventBus,
		bcryptCost: bcryptCost,
		resetTTL:   resetTTL,
		inviteTTL:  inviteTTL,
		logger:     logger.With("component", "auth_service"),
	}
}

// Authenticate verifies email and password and issues a token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*User, *AuthTokens, error) {
	rec, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		// same error for unknown email and wrong password
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !rec.IsActive {
		return nil, nil, ErrUserInactive
	}

	pair, err := s.issueTokens(rec.ID)
	if err != nil {
		return nil, nil, err
	}

	return s.toUser(rec), pair, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := parseUserID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	rec, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !rec.IsActive {
		return nil, ErrUserInactive
	}

	return s.issueTokens(rec.ID)
}

// ValidateAccessToken resolves the bearer token to the current principal.
func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.tokens.ValidateToken(accessToken)
	if err != nil {
		return nil, err
	}

	userID, err := parseUserID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	rec, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !rec.IsActive {
		return nil, ErrUserInactive
	}

	return s.toUser(rec), nil
}

// RequestPasswordReset issues a reset token and publishes the notification
// event. It succeeds silently for unknown emails so the endpoint does not
// leak which addresses exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	rec, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.repo.CreateResetToken(ctx, rec.ID, token, expiresAt); err != nil {
		return err
	}

	s.publish(ctx, events.NewPasswordResetRequestedEvent(rec.ID, rec.Email, token))
	return nil
}

// ResetPassword consumes a single-use reset token.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	rec, err := s.repo.GetResetToken(ctx, dto.Token)
	if err != nil {
		return ErrResetTokenInvalid
	}
	if rec.Used || time.Now().After(rec.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, rec.UserID, hash, false); err != nil {
		return err
	}
	return s.repo.MarkTokenUsed(ctx, rec.ID)
}

// ChangePassword verifies the current password before setting the new one and
// clears the must-change flag set by admin resets.
func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	rec, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash, false)
}

// ActivateInvite consumes an invite token, sets the initial password and
// flips the account from invited to active. Invites past their TTL are
// rejected and the account marked expired.
func (s *Service) ActivateInvite(ctx context.Context, dto ActivateInviteDTO) (*User, error) {
	tok, err := s.repo.GetResetToken(ctx, dto.Token)
	if err != nil {
		return nil, ErrResetTokenInvalid
	}
	if tok.Used {
		return nil, ErrResetTokenInvalid
	}

	rec, err := s.repo.GetUserByID(ctx, tok.UserID)
	if err != nil {
		return nil, ErrResetTokenInvalid
	}
	if rec.InviteStatus != userdm.InviteStatusInvited {
		return nil, ErrResetTokenInvalid
	}

	if time.Now().After(tok.ExpiresAt) {
		if err := s.repo.MarkInviteExpired(ctx, rec.ID); err != nil {
			s.logger.Error("failed to mark invite expired", "error", err, "user_id", rec.ID)
		}
		return nil, ErrInviteExpired
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ActivateUser(ctx, rec.ID, hash); err != nil {
		return nil, err
	}
	if err := s.repo.MarkTokenUsed(ctx, tok.ID); err != nil {
		return nil, err
	}

	rec.IsActive = true
	rec.InviteStatus = userdm.InviteStatusActive
	return s.toUser(rec), nil
}

// IssueInviteToken creates the activation token for a freshly created user.
// Called by the employee service after provisioning the account.
func (s *Service) IssueInviteToken(ctx context.Context, userID int64) (string, time.Time, error) {
	token, err := GenerateRandomToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(s.inviteTTL)
	if err := s.repo.CreateResetToken(ctx, userID, token, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ExpireStaleInvites flips accounts whose invite window lapsed without
// activation. Run from the scheduler.
func (s *Service) ExpireStaleInvites(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.inviteTTL)
	return s.repo.ExpireStaleInvites(ctx, cutoff)
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueTokens(userID int64) (*AuthTokens, error) {
	id := formatUserID(userID)
	access, err := s.tokens.GenerateAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(id)
	if err != nil {
		return nil, err
	}
	return &AuthTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) toUser(rec *CredentialRecord) *User {
	return &User{
		ID:                 rec.ID,
		Email:              rec.Email,
		Name:               rec.Name,
		Role:               rec.Role,
		EmployeeID:         rec.EmployeeID,
		MustChangePassword: rec.MustChangePassword,
		Permissions:        PermissionsForRole(rec.Role),
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseUserID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// GenerateRandomToken returns a 32-byte random token hex encoded.
func GenerateRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
