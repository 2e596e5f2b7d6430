package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
	"github.com/oksasatya/tour-booking-api/pkg/mailer"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

type authFixture struct {
	svc    *AuthService
	users  *fakeUsers
	resets *fakeResets
	audit  *fakeAudit
	pub    *fakePublisher
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := newFakeUsers()
	resets := newFakeResets()
	audit := &fakeAudit{}
	pub := &fakePublisher{}
	notifier := NewNotifier(pub, tpl.Brand{CompanyName: "Natours"}, true, nil)
	svc := NewAuthService(users, helpers.NewPasswordHasher(4), helpers.NewJWTManager("test-secret", time.Hour),
		resets, notifier, audit, "http://localhost:8080/api/v1/users/resetPassword/", nil)
	return authFixture{svc: svc, users: users, resets: resets, audit: audit, pub: pub}
}

var meta = ClientMeta{IP: "127.0.0.1", UserAgent: "test"}

func (f authFixture) register(t *testing.T, email string) *Session {
	t.Helper()
	s, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "Jonas Schmedtmann", Email: email, Password: "pass1234", PasswordConfirm: "pass1234",
	}, meta)
	require.NoError(t, err)
	return s
}

func TestRegisterCreatesUserAndSendsWelcome(t *testing.T) {
	f := newAuthFixture(t)
	s := f.register(t, " Jonas@Example.com ")

	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "jonas@example.com", s.User.Email)
	assert.Equal(t, entity.RoleUser, s.User.Role)
	assert.Equal(t, entity.DefaultPhoto, s.User.Photo)
	assert.Empty(t, s.User.Password)

	require.Len(t, f.pub.jobs, 1)
	job := f.pub.jobs[0].(mailer.EmailJob)
	assert.Equal(t, tpl.Welcome, job.Template)
	assert.Equal(t, "jonas@example.com", job.To)
	assert.Equal(t, []string{ActionRegister}, f.audit.actions())
}

func TestRegisterRejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "pass1234", PasswordConfirm: "pass4321"}, meta)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "short", PasswordConfirm: "short"}, meta)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	f.register(t, "a@example.com")
	_, err = f.svc.Register(ctx, RegisterInput{Name: "B", Email: "A@example.com", Password: "pass1234", PasswordConfirm: "pass1234"}, meta)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jonas@example.com")
	ctx := context.Background()

	s, err := f.svc.Login(ctx, LoginInput{Email: "JONAS@example.com", Password: "pass1234"}, meta)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Empty(t, s.User.Password)

	for _, in := range []LoginInput{
		{Email: "jonas@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "pass1234"},
	} {
		_, err := f.svc.Login(ctx, in, meta)
		require.Error(t, err)
		assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
		assert.Equal(t, "Incorrect email or password", apperror.As(err).Message)
	}
	assert.Contains(t, f.audit.actions(), ActionLoginFailed)
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	s := f.register(t, "jonas@example.com")
	ctx := context.Background()

	p, err := f.svc.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, p.UserID)
	assert.Equal(t, entity.RoleUser, p.Role)

	_, err = f.svc.Authenticate(ctx, "not-a-token")
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	require.NoError(t, f.users.Deactivate(ctx, s.User.ID))
	_, err = f.svc.Authenticate(ctx, s.Token)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestAuthenticateRejectsTokenOlderThanPasswordChange(t *testing.T) {
	f := newAuthFixture(t)
	s := f.register(t, "jonas@example.com")
	ctx := context.Background()

	changed := time.Now().Add(time.Hour)
	u := f.users.items[s.User.ID]
	u.PasswordChangedAt = &changed
	f.users.items[s.User.ID] = u

	_, err := f.svc.Authenticate(ctx, s.Token)
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	assert.Contains(t, apperror.As(err).Message, "recently changed password")
}

func TestForgotAndResetPasswordRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jonas@example.com")
	ctx := context.Background()

	link, err := f.svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "jonas@example.com"}, meta)
	require.NoError(t, err)
	assert.Equal(t, ResetTokenTTL, f.resets.ttl)
	require.True(t, strings.HasPrefix(link, "http://localhost:8080/api/v1/users/resetPassword/"))
	token := link[strings.LastIndex(link, "/")+1:]

	_, stored := f.resets.items[helpers.DigestToken(token)]
	assert.True(t, stored)
	_, plainStored := f.resets.items[token]
	assert.False(t, plainStored)

	last := f.pub.jobs[len(f.pub.jobs)-1].(mailer.EmailJob)
	assert.Equal(t, tpl.PasswordReset, last.Template)
	assert.Equal(t, link, last.Data["URL"])

	s, err := f.svc.ResetPassword(ctx, token, ResetPasswordInput{Password: "newpass123", PasswordConfirm: "newpass123"}, meta)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	_, err = f.svc.Login(ctx, LoginInput{Email: "jonas@example.com", Password: "newpass123"}, meta)
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(ctx, token, ResetPasswordInput{Password: "again1234", PasswordConfirm: "again1234"}, meta)
	require.Error(t, err)
	assert.Equal(t, "Token is invalid or has expired", apperror.As(err).Message)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "ghost@example.com"}, meta)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, []string{ActionResetUnknown}, f.audit.actions())
}

func TestForgotPasswordDropsTokenWhenEmailFails(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "jonas@example.com")
	f.pub.err = errors.New("broker down")

	_, err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "jonas@example.com"}, meta)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.Empty(t, f.resets.items)
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	s := f.register(t, "jonas@example.com")
	ctx := context.Background()
	p, err := f.svc.Authenticate(ctx, s.Token)
	require.NoError(t, err)

	_, err = f.svc.UpdatePassword(ctx, p, UpdatePasswordInput{PasswordCurrent: "wrong-pass", Password: "newpass123", PasswordConfirm: "newpass123"}, meta)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	fresh, err := f.svc.UpdatePassword(ctx, p, UpdatePasswordInput{PasswordCurrent: "pass1234", Password: "newpass123", PasswordConfirm: "newpass123"}, meta)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Token)
	assert.Contains(t, f.audit.actions(), ActionPasswordUpdate)
}
