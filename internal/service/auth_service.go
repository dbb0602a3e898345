package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/credential"
	"github.com/iliyamo/publicvoice/internal/mailer"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
	"github.com/iliyamo/publicvoice/internal/storage"
	"github.com/iliyamo/publicvoice/internal/validate"
)

// ResetTokenTTL is the validity window of a password reset token.
const ResetTokenTTL = time.Hour

// DefaultDeliveryTimeout bounds a reset email hand-off when AuthDeps leaves
// it unset.
const DefaultDeliveryTimeout = 30 * time.Second

// ForgotPasswordMessage is returned for every forgot-password request,
// whether or not the email is registered.
const ForgotPasswordMessage = "If an account exists for this email, a password reset link has been sent."

const maxFullName = 255

// AvatarStore saves and removes profile images.
type AvatarStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(name string) error
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// ProfileUpdate lists the profile fields a user may change.  Nil leaves a
// field as is.
type ProfileUpdate struct {
	FullName *string
	Image    *Upload
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token credential.AccessToken
	User  *model.User
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users       repository.UserStore
	Credentials *credential.Service
	Notifier    mailer.Notifier
	Avatars     AvatarStore
	FrontendURL string
	Log         *zap.Logger
	// DeliveryTimeout bounds one reset email hand-off.  Zero means
	// DefaultDeliveryTimeout.
	DeliveryTimeout time.Duration
}

// AuthService implements registration, login, profile changes and the
// password reset protocol.
type AuthService struct {
	users       repository.UserStore
	creds       *credential.Service
	notifier    mailer.Notifier
	avatars     AvatarStore
	frontendURL string
	log         *zap.Logger

	deliveryTimeout time.Duration
	deliveries      sync.WaitGroup
}

// NewAuthService wires an AuthService.
func NewAuthService(d AuthDeps) *AuthService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := d.DeliveryTimeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &AuthService{
		deliveryTimeout: timeout,
		users:           d.Users,
		creds:           d.Credentials,
		notifier:        d.Notifier,
		avatars:         d.Avatars,
		frontendURL:     strings.TrimRight(d.FrontendURL, "/"),
		log:             log,
	}
}

// Register creates a user account.  The role is always user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name, err := validate.Required("full name", in.FullName, maxFullName)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if err := validate.Password(in.Password); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	hash, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{FullName: name, Email: email, PasswordHash: hash, Role: model.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.Uint64("user_id", u.ID))
	return u, nil
}

// Login checks the credentials and issues an access token.  Unknown emails
// and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	normalized, err := validate.Email(email)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if !s.creds.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	tok, err := s.creds.IssueAccessToken(u.ID, 0)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{Token: tok, User: u}, nil
}

// UpdateProfile changes the name and/or avatar of user.  A replaced avatar
// file is removed once the row points at the new one.
func (s *AuthService) UpdateProfile(ctx context.Context, user *model.User, p ProfileUpdate) (*model.User, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	name := user.FullName
	if p.FullName != nil {
		n, err := validate.Required("full name", *p.FullName, maxFullName)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		name = n
	}

	image := user.ProfileImage
	var saved string
	if p.Image != nil {
		if s.avatars == nil {
			return nil, errors.New("avatar storage not configured")
		}
		n, err := s.avatars.Save(p.Image.Filename, p.Image.Body)
		switch {
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, invalid("profile image must be one of: %s", strings.Join(storage.AllowedExtensions(), ", "))
		case errors.Is(err, storage.ErrTooLarge):
			return nil, invalid("profile image is too large")
		case err != nil:
			return nil, fmt.Errorf("save avatar: %w", err)
		}
		saved = n
		image = &saved
	}

	if err := s.users.UpdateProfile(ctx, user.ID, name, image); err != nil {
		if saved != "" {
			_ = s.avatars.Remove(saved)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if saved != "" && user.ProfileImage != nil && *user.ProfileImage != saved {
		if err := s.avatars.Remove(*user.ProfileImage); err != nil {
			s.log.Warn("remove old avatar", zap.String("file", *user.ProfileImage), zap.Error(err))
		}
	}

	updated, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return updated, nil
}

// ForgotPassword starts the reset protocol for email.  The caller always
// receives ForgotPasswordMessage; whether the email exists is only visible
// in the logs.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	normalized, err := validate.Email(email)
	if err != nil {
		return ForgotPasswordMessage, nil
	}
	u, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debug("password reset requested for unknown email")
		return ForgotPasswordMessage, nil
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	tok, err := s.creds.NewResetToken(ResetTokenTTL)
	if err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, tok.Hash, tok.Exp); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	notice := mailer.ResetNotice{
		Email:     u.Email,
		FullName:  u.FullName,
		Link:      s.frontendURL + "/reset-password?token=" + url.QueryEscape(tok.Raw),
		ExpiresAt: tok.Exp,
	}
	s.deliver(ctx, u.ID, notice)
	return ForgotPasswordMessage, nil
}

// deliver hands n to the notifier in the background so that known and
// unknown emails answer in the same time.  The hand-off keeps ctx values but
// not its cancellation, and is bounded by the delivery timeout.
func (s *AuthService) deliver(ctx context.Context, userID uint64, n mailer.ResetNotice) {
	if s.notifier == nil {
		s.log.Warn("password reset email not delivered: no mailer configured", zap.Uint64("user_id", userID))
		return
	}
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
		defer cancel()
		if err := s.notifier.NotifyPasswordReset(dctx, n); err != nil {
			s.log.Warn("password reset email delivery failed", zap.Uint64("user_id", userID), zap.Error(err))
		}
	}()
}

// Wait blocks until background reset deliveries have finished.
func (s *AuthService) Wait() {
	s.deliveries.Wait()
}

// ResetPassword consumes a reset token and sets a new password.  A token
// works once.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("%s", repository.ErrResetTokenInvalid.Error())
	}
	if err := validate.Password(newPassword); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	hash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.ConsumeResetToken(ctx, credential.HashResetToken(token), hash, time.Now().UTC())
	if errors.Is(err, repository.ErrResetTokenInvalid) {
		return &ValidationError{Msg: err.Error()}
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	s.log.Info("password reset", zap.Uint64("user_id", id))
	return nil
}
