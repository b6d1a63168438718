package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	userdm "github.com/hrplatform/leave-management/internal/core/datamodel/user"
	"github.com/hrplatform/leave-management/internal/core/events"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockAuthRepository struct {
	usersByEmail  map[string]*CredentialRecord
	usersByID     map[int64]*CredentialRecord
	tokens        map[string]*ResetTokenRecord
	nextTokenID   int64
	returnError   bool
	errorToReturn error

	passwordUpdates map[int64]string
	activatedUsers  map[int64]bool
	expiredInvites  map[int64]bool
}

func newMockAuthRepository() *mockAuthRepository {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct_password1"), bcrypt.MinCost)
	empID := int64(10)

	byEmail := map[string]*CredentialRecord{
		"employee@acme.test": {
			ID: 1, Email: "employee@acme.test", Name: "Emma Employee",
			PasswordHash: string(hashed), Role: userdm.RoleEmployee,
			IsActive: true, InviteStatus: userdm.InviteStatusActive,
			EmployeeID: &empID,
		},
		"inactive@acme.test": {
			ID: 2, Email: "inactive@acme.test", Name: "Ivan Inactive",
			PasswordHash: string(hashed), Role: userdm.RoleEmployee,
			IsActive: false, InviteStatus: userdm.InviteStatusInvited,
		},
		"admin@acme.test": {
			ID: 3, Email: "admin@acme.test", Name: "Ada Admin",
			PasswordHash: string(hashed), Role: userdm.RoleAdmin,
			IsActive: true, InviteStatus: userdm.InviteStatusActive,
		},
	}

	byID := make(map[int64]*CredentialRecord)
	for _, rec := range byEmail {
		byID[rec.ID] = rec
	}

	return &mockAuthRepository{
		usersByEmail:    byEmail,
		usersByID:       byID,
		tokens:          make(map[string]*ResetTokenRecord),
		nextTokenID:     1,
		passwordUpdates: make(map[int64]string),
		activatedUsers:  make(map[int64]bool),
		expiredInvites:  make(map[int64]bool),
	}
}

func (m *mockAuthRepository) GetUserByEmail(_ context.Context, email string) (*CredentialRecord, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if rec, ok := m.usersByEmail[email]; ok {
		return rec, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) GetUserByID(_ context.Context, id int64) (*CredentialRecord, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if rec, ok := m.usersByID[id]; ok {
		return rec, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) UpdatePassword(_ context.Context, userID int64, hash string, _ bool) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.passwordUpdates[userID] = hash
	return nil
}

func (m *mockAuthRepository) ActivateUser(_ context.Context, userID int64, hash string) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.activatedUsers[userID] = true
	m.passwordUpdates[userID] = hash
	return nil
}

func (m *mockAuthRepository) MarkInviteExpired(_ context.Context, userID int64) error {
	m.expiredInvites[userID] = true
	return nil
}

func (m *mockAuthRepository) CreateResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.tokens[token] = &ResetTokenRecord{
		ID: m.nextTokenID, UserID: userID, Token: token, ExpiresAt: expiresAt,
	}
	m.nextTokenID++
	return nil
}

func (m *mockAuthRepository) GetResetToken(_ context.Context, token string) (*ResetTokenRecord, error) {
	if rec, ok := m.tokens[token]; ok {
		return rec, nil
	}
	return nil, errors.New("token not found")
}

func (m *mockAuthRepository) MarkTokenUsed(_ context.Context, tokenID int64) error {
	for _, rec := range m.tokens {
		if rec.ID == tokenID {
			rec.Used = true
			return nil
		}
	}
	return errors.New("token not found")
}

func (m *mockAuthRepository) ExpireStaleInvites(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (m *mockAuthRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

type capturingEventBus struct {
	published []events.Event
}

func (b *capturingEventBus) Publish(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockAuthRepository
		eventBus *capturingEventBus
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		eventBus = &capturingEventBus{}
		tokenGen := NewJWTTokenGenerator("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokenGen, eventBus, bcrypt.MinCost, time.Hour, 7*24*time.Hour, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return the user and a token pair", func() {
				user, tokens, err := service.Authenticate(ctx, LoginDTO{
					Email:    "employee@acme.test",
					Password: "correct_password1",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
				gomega.Expect(user.EmployeeID).ToNot(gomega.BeNil())
				gomega.Expect(*user.EmployeeID).To(gomega.Equal(int64(10)))
			})

			ginkgo.It("should derive permissions from the role", func() {
				user, _, err := service.Authenticate(ctx, LoginDTO{
					Email:    "admin@acme.test",
					Password: "correct_password1",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(user.Permissions).To(gomega.ContainElement(PermissionAdmin))
				gomega.Expect(user.Permissions).To(gomega.ContainElement(PermissionApproveLeaves))
			})

			ginkgo.It("should issue access tokens that validate back to the user", func() {
				_, tokens, err := service.Authenticate(ctx, LoginDTO{
					Email:    "employee@acme.test",
					Password: "correct_password1",
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				user, err := service.ValidateAccessToken(ctx, tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(user.ID).To(gomega.Equal(int64(1)))
				gomega.Expect(user.Email).To(gomega.Equal("employee@acme.test"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return the same error for unknown email and wrong password", func() {
				_, _, err := service.Authenticate(ctx, LoginDTO{
					Email:    "nobody@acme.test",
					Password: "whatever1",
				})
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))

				_, _, err = service.Authenticate(ctx, LoginDTO{
					Email:    "employee@acme.test",
					Password: "wrong_password1",
				})
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the account is inactive", func() {
			ginkgo.It("should reject login even with the correct password", func() {
				_, _, err := service.Authenticate(ctx, LoginDTO{
					Email:    "inactive@acme.test",
					Password: "correct_password1",
				})
				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should exchange a valid refresh token for a new pair", func() {
			_, tokens, err := service.Authenticate(ctx, LoginDTO{
				Email:    "employee@acme.test",
				Password: "correct_password1",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			fresh, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(fresh.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should reject an access token presented as a refresh token", func() {
			_, tokens, err := service.Authenticate(ctx, LoginDTO{
				Email:    "employee@acme.test",
				Password: "correct_password1",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens(ctx, "not-a-token")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("RequestPasswordReset", func() {
		ginkgo.It("should store a token and publish the reset event", func() {
			err := service.RequestPasswordReset(ctx, "employee@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.tokens).To(gomega.HaveLen(1))
			gomega.Expect(eventBus.published).To(gomega.HaveLen(1))
			gomega.Expect(eventBus.published[0].EventType()).To(gomega.Equal(events.EventTypePasswordResetRequested))
		})

		ginkgo.It("should succeed silently for unknown emails", func() {
			err := service.RequestPasswordReset(ctx, "nobody@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.tokens).To(gomega.BeEmpty())
			gomega.Expect(eventBus.published).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ResetPassword", func() {
		var token string

		ginkgo.BeforeEach(func() {
			err := service.RequestPasswordReset(ctx, "employee@acme.test")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			for t := range mockRepo.tokens {
				token = t
			}
		})

		ginkgo.It("should update the password and consume the token", func() {
			err := service.ResetPassword(ctx, ResetPasswordDTO{
				Token:       token,
				NewPassword: "newpassword1",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.passwordUpdates).To(gomega.HaveKey(int64(1)))
			gomega.Expect(mockRepo.tokens[token].Used).To(gomega.BeTrue())
		})

		ginkgo.It("should refuse a token that was already used", func() {
			err := service.ResetPassword(ctx, ResetPasswordDTO{Token: token, NewPassword: "newpassword1"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, NewPassword: "another1pass"})
			gomega.Expect(err).To(gomega.Equal(ErrResetTokenInvalid))
		})

		ginkgo.It("should refuse an expired token", func() {
			mockRepo.tokens[token].ExpiresAt = time.Now().Add(-time.Minute)
			err := service.ResetPassword(ctx, ResetPasswordDTO{Token: token, NewPassword: "newpassword1"})
			gomega.Expect(err).To(gomega.Equal(ErrResetTokenInvalid))
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("should require the current password to match", func() {
			err := service.ChangePassword(ctx, 1, ChangePasswordDTO{
				CurrentPassword: "wrong_password1",
				NewPassword:     "newpassword1",
			})
			gomega.Expect(err).To(gomega.Equal(ErrWrongPassword))
		})

		ginkgo.It("should store the new hash when the current password matches", func() {
			err := service.ChangePassword(ctx, 1, ChangePasswordDTO{
				CurrentPassword: "correct_password1",
				NewPassword:     "newpassword1",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.passwordUpdates).To(gomega.HaveKey(int64(1)))
		})
	})

	ginkgo.Describe("ActivateInvite", func() {
		var token string

		ginkgo.BeforeEach(func() {
			var err error
			token, _, err = service.IssueInviteToken(ctx, 2)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should activate an invited account", func() {
			user, err := service.ActivateInvite(ctx, ActivateInviteDTO{
				Token:    token,
				Password: "welcome1pass",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(mockRepo.activatedUsers[int64(2)]).To(gomega.BeTrue())
			gomega.Expect(mockRepo.tokens[token].Used).To(gomega.BeTrue())
		})

		ginkgo.It("should reject an expired invite and mark the account expired", func() {
			mockRepo.tokens[token].ExpiresAt = time.Now().Add(-time.Minute)

			_, err := service.ActivateInvite(ctx, ActivateInviteDTO{
				Token:    token,
				Password: "welcome1pass",
			})
			gomega.Expect(err).To(gomega.Equal(ErrInviteExpired))
			gomega.Expect(mockRepo.expiredInvites[int64(2)]).To(gomega.BeTrue())
		})

		ginkgo.It("should reject activation for an already active account", func() {
			activeToken, _, err := service.IssueInviteToken(ctx, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ActivateInvite(ctx, ActivateInviteDTO{
				Token:    activeToken,
				Password: "welcome1pass",
			})
			gomega.Expect(err).To(gomega.Equal(ErrResetTokenInvalid))
		})
	})

	ginkgo.Describe("ValidatePasswordStrength", func() {
		ginkgo.It("should reject passwords shorter than 8 characters", func() {
			gomega.Expect(ValidatePasswordStrength("ab1")).To(gomega.Equal(ErrWeakPassword))
		})

		ginkgo.It("should reject passwords without a digit", func() {
			gomega.Expect(ValidatePasswordStrength("abcdefgh")).To(gomega.Equal(ErrWeakPassword))
		})

		ginkgo.It("should reject passwords without a letter", func() {
			gomega.Expect(ValidatePasswordStrength("12345678")).To(gomega.Equal(ErrWeakPassword))
		})

		ginkgo.It("should accept a password with letters and digits", func() {
			gomega.Expect(ValidatePasswordStrength("abcdefg1")).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("repository failures", func() {
		ginkgo.It("should not leak repo errors from Authenticate", func() {
			mockRepo.setError(errors.New("connection refused"))
			_, _, err := service.Authenticate(ctx, LoginDTO{
				Email:    "employee@acme.test",
				Password: "correct_password1",
			})
			gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
		})
	})
})
