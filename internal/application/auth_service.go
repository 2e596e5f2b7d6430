package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// ResetTokenTTL is how long a forgot-password token stays usable.
const ResetTokenTTL = 10 * time.Minute

// Audit actions.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionLogout         = "logout"
	ActionResetInit      = "reset_init_issue"
	ActionResetUnknown   = "reset_init_unknown"
	ActionResetConfirm   = "reset_confirm"
	ActionPasswordUpdate = "password_update"
)

type RegisterInput struct {
	Name            string `json:"name" binding:"required,max=60"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type UpdatePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// ClientMeta describes the caller for the audit log.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Session is a freshly issued token for a user.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

type AuthService struct {
	Users    repo.UserRepository
	Hasher   *helpers.PasswordHasher
	Tokens   *helpers.JWTManager
	Resets   ResetTokenStore
	Notifier *Notifier
	Audit    repo.AuditRepository
	ResetURL string

	// AccountURL is linked from the welcome email.
	AccountURL string
	Logger     *logrus.Logger
}

func NewAuthService(users repo.UserRepository, hasher *helpers.PasswordHasher, tokens *helpers.JWTManager, resets ResetTokenStore, notifier *Notifier, audit repo.AuditRepository, resetURL string, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Hasher:   hasher,
		Tokens:   tokens,
		Resets:   resets,
		Notifier: notifier,
		Audit:    audit,
		ResetURL: strings.TrimRight(resetURL, "/"),
		Logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*Session, error) {
	if in.Password != in.PasswordConfirm {
		return nil, apperror.Validation("Invalid input data. passwordConfirm passwords are not the same", map[string]string{"passwordConfirm": "passwords are not the same"})
	}
	if len(in.Password) < helpers.MinPasswordLength {
		return nil, apperror.Validation("Invalid input data. password must be at least 8 characters", map[string]string{"password": "must be at least 8 characters"})
	}
	u := &entity.User{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
		Photo: entity.DefaultPhoto,
		Role:  entity.RoleUser,
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	u.Password = hash
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	u.Password = ""

	// A missing welcome email does not undo the signup.
	_ = s.Notifier.Send(ctx, tpl.Welcome, u.Name, u.Email, tpl.WithURL(s.AccountURL))
	s.audit(ctx, u.ID.Hex(), u.Email, ActionRegister, meta, nil)
	return s.issue(u)
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta ClientMeta) (*Session, error) {
	email := normalizeEmail(in.Email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}
	if u == nil || !s.Hasher.Compare(u.Password, in.Password) {
		s.audit(ctx, "", email, ActionLoginFailed, meta, nil)
		return nil, apperror.Unauthorized("Incorrect email or password")
	}
	u.Password = ""
	s.audit(ctx, u.ID.Hex(), u.Email, ActionLogin, meta, nil)
	return s.issue(u)
}

func (s *AuthService) Logout(ctx context.Context, p *auth.Principal, meta ClientMeta) {
	if p == nil {
		s.audit(ctx, "", "", ActionLogout, meta, nil)
		return
	}
	s.audit(ctx, p.UserID.Hex(), p.Email, ActionLogout, meta, nil)
}

// ForgotPassword stores the digest of a fresh token and mails the plain one.
// It returns the reset URL so callers (and tests) can observe it; the HTTP
// layer never exposes it.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput, meta ClientMeta) (string, error) {
	email := normalizeEmail(in.Email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			s.audit(ctx, "", email, ActionResetUnknown, meta, nil)
			return "", apperror.NotFound("There is no user with that email address")
		}
		return "", err
	}
	plain, digest, err := helpers.GenResetToken()
	if err != nil {
		return "", apperror.Internal("generate reset token", err)
	}
	if err := s.Resets.Save(ctx, digest, u.ID.Hex(), ResetTokenTTL); err != nil {
		return "", apperror.Internal("store reset token", err)
	}
	link := s.ResetURL + "/" + plain
	if err := s.Notifier.Send(ctx, tpl.PasswordReset, u.Name, u.Email, tpl.WithURL(link), tpl.WithExpiresIn(ResetTokenTTL)); err != nil {
		// The token is useless without the email; drop it.
		if _, _, err := s.Resets.Take(ctx, digest); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("failed to drop unsent reset token")
		}
		return "", apperror.Upstream("There was an error sending the email. Try again later!", err)
	}
	s.audit(ctx, u.ID.Hex(), u.Email, ActionResetInit, meta, nil)
	return link, nil
}

// ResetPassword consumes token and sets a new password. A token works once.
func (s *AuthService) ResetPassword(ctx context.Context, token string, in ResetPasswordInput, meta ClientMeta) (*Session, error) {
	invalid := apperror.Validation("Token is invalid or has expired", map[string]string{"token": "is invalid or has expired"})
	if in.Password != in.PasswordConfirm {
		return nil, apperror.Validation("Invalid input data. passwordConfirm passwords are not the same", map[string]string{"passwordConfirm": "passwords are not the same"})
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid
	}
	uid, found, err := s.Resets.Take(ctx, helpers.DigestToken(token))
	if err != nil {
		return nil, apperror.Internal("read reset token", err)
	}
	if !found {
		return nil, invalid
	}
	id, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return nil, invalid
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if err := s.setPassword(ctx, u, in.Password); err != nil {
		return nil, err
	}
	s.audit(ctx, u.ID.Hex(), u.Email, ActionResetConfirm, meta, map[string]any{"token": "redacted"})
	return s.issue(u)
}

// UpdatePassword changes the caller's password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, p auth.Principal, in UpdatePasswordInput, meta ClientMeta) (*Session, error) {
	if in.Password != in.PasswordConfirm {
		return nil, apperror.Validation("Invalid input data. passwordConfirm passwords are not the same", map[string]string{"passwordConfirm": "passwords are not the same"})
	}
	u, err := s.Users.GetByIDWithPassword(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Compare(u.Password, in.PasswordCurrent) {
		return nil, apperror.Unauthorized("Your current password is wrong.")
	}
	if err := s.setPassword(ctx, u, in.Password); err != nil {
		return nil, err
	}
	s.audit(ctx, u.ID.Hex(), u.Email, ActionPasswordUpdate, meta, nil)
	return s.issue(u)
}

// Authenticate resolves a session token into the principal of an active
// user whose password has not changed since the token was issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, apperror.Unauthorized("Invalid token. Please log in again!")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return auth.Principal{}, apperror.Unauthorized("Invalid token. Please log in again!")
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return auth.Principal{}, apperror.Unauthorized("The user belonging to this token does no longer exist.")
		}
		return auth.Principal{}, err
	}
	if u.ChangedPasswordAfter(claims.IssuedAt()) {
		return auth.Principal{}, apperror.Unauthorized("User recently changed password! Please log in again.")
	}
	return auth.PrincipalOf(u), nil
}

func (s *AuthService) setPassword(ctx context.Context, u *entity.User, plain string) error {
	if len(plain) < helpers.MinPasswordLength {
		return apperror.Validation("Invalid input data. password must be at least 8 characters", map[string]string{"password": "must be at least 8 characters"})
	}
	hash, err := s.Hasher.Hash(plain)
	if err != nil {
		return apperror.Internal("hash password", err)
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	u.Password = ""
	return nil
}

func (s *AuthService) issue(u *entity.User) (*Session, error) {
	token, exp, err := s.Tokens.Generate(u.ID.Hex())
	if err != nil {
		return nil, apperror.Internal("sign token", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// audit writes one auth event. Failures are logged and swallowed.
func (s *AuthService) audit(ctx context.Context, userID, email, action string, meta ClientMeta, md map[string]any) {
	if s.Audit == nil {
		return
	}
	err := s.Audit.Insert(ctx, repo.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
	})
	if err != nil && s.Logger != nil {
		helpers.LogError(s.Logger, "audit insert failed", err, logrus.Fields{"action": action, "user_id": userID})
	}
}
