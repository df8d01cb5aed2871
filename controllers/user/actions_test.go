package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront-api/apperr"
	"storefront-api/auth"
	"storefront-api/mail"
	"storefront-api/mail/mailtest"
	"storefront-api/models"
	"storefront-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	identity Identity
	err      error
}

func (p fakeProvider) Validate(_ context.Context, token string) (Identity, error) {
	if p.err != nil {
		return Identity{}, p.err
	}
	return p.identity, nil
}

type fixture struct {
	db     *gorm.DB
	svc    *Service
	mails  *mailtest.Recorder
	signer *auth.Signer
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	f := fixture{db: db, mails: &mailtest.Recorder{}, signer: auth.NewSigner("secret")}
	f.svc = NewService(db, f.signer, mail.NewMailer(f.mails, "https://shop.test"), nil, map[string]IdentityProvider{
		"google": fakeProvider{identity: Identity{AccountID: "g-1", Email: "Oauth@Example.com", Name: "OAuth User", Image: "https://img.test/a.png"}},
		"broken": fakeProvider{err: errors.New("nope")},
	})
	return f
}

func register(t *testing.T, f fixture, email string) *models.User {
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: email, Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return u
}

func verificationToken(t *testing.T, db *gorm.DB, email string) models.VerificationToken {
	var vt models.VerificationToken
	require.NoError(t, db.Where("email = ?", email).First(&vt).Error)
	return vt
}

func TestRegisterVerifyLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u := register(t, f, "  Ada@Example.com ")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Dup", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	vt := verificationToken(t, f.db, "ada@example.com")
	assert.Contains(t, f.mails.Last().Text, vt.Token)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "secret1"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Len(t, f.mails.Messages(), 2, "unverified login resends the confirmation")

	vt = verificationToken(t, f.db, "ada@example.com")
	require.NoError(t, f.svc.VerifyEmail(ctx, vt.Token))
	assert.True(t, apperr.IsKind(f.svc.VerifyEmail(ctx, vt.Token), apperr.KindNotFound))

	_, err = f.svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong12"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	res, err := f.svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.signer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := setup(t)
	cases := map[string]RegisterInput{
		"mismatch":  {Name: "A", Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2"},
		"short":     {Name: "A", Email: "a@example.com", Password: "abc", ConfirmPassword: "abc"},
		"bad email": {Name: "A", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"},
		"no name":   {Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), in)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), err)
		})
	}
}

func TestVerifyEmailExpired(t *testing.T) {
	f := setup(t)
	register(t, f, "late@example.com")
	vt := verificationToken(t, f.db, "late@example.com")

	f.svc.now = func() time.Time { return time.Now().Add(2 * auth.VerificationTTL) }
	err := f.svc.VerifyEmail(context.Background(), vt.Token)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestEmailChangeVerification(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "old@example.com", models.RoleUser)

	require.NoError(t, f.svc.SendVerification(ctx, u.ID, "new@example.com"))
	vt := verificationToken(t, f.db, "new@example.com")
	assert.Equal(t, u.ID, vt.UserID)

	require.NoError(t, f.svc.VerifyEmail(ctx, vt.Token))
	got, err := f.svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestLoginTwoFactor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "2fa@example.com", models.RoleUser)
	require.NoError(t, f.db.Model(&u).Update("is_two_factor_enabled", true).Error)

	res, err := f.svc.Login(ctx, LoginInput{Email: "2fa@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, res.TwoFactorRequired)
	assert.Empty(t, res.Token)

	var tok models.TwoFactorToken
	require.NoError(t, f.db.Where("email = ?", "2fa@example.com").First(&tok).Error)
	assert.Len(t, tok.Token, 6)
	assert.True(t, strings.Contains(f.mails.Last().Text, tok.Token))

	wrong := "000000"
	if tok.Token == wrong {
		wrong = "111111"
	}
	_, err = f.svc.Login(ctx, LoginInput{Email: "2fa@example.com", Password: "password123", Code: wrong})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	res, err = f.svc.Login(ctx, LoginInput{Email: "2fa@example.com", Password: "password123", Code: tok.Token})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	var left int64
	f.db.Model(&models.TwoFactorToken{}).Count(&left)
	assert.Zero(t, left)
	f.db.Model(&models.TwoFactorConfirmation{}).Count(&left)
	assert.Zero(t, left)

	// codes are single use
	_, err = f.svc.Login(ctx, LoginInput{Email: "2fa@example.com", Password: "password123", Code: tok.Token})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLoginTwoFactorExpired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.db, "slow@example.com", models.RoleUser)
	require.NoError(t, f.db.Model(&u).Update("is_two_factor_enabled", true).Error)

	_, err := f.svc.Login(ctx, LoginInput{Email: "slow@example.com", Password: "password123"})
	require.NoError(t, err)
	var tok models.TwoFactorToken
	require.NoError(t, f.db.First(&tok).Error)

	f.svc.now = func() time.Time { return time.Now().Add(auth.TwoFactorTTL + time.Minute) }
	_, err = f.svc.Login(ctx, LoginInput{Email: "slow@example.com", Password: "password123", Code: tok.Token})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLoginInactive(t *testing.T) {
	f := setup(t)
	u := testutil.SeedUser(t, f.db, "gone@example.com", models.RoleUser)
	require.NoError(t, f.db.Model(&u).Update("is_active", false).Error)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "gone@example.com", Password: "password123"})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestOAuthLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.OAuthLogin(ctx, "google", "tok")
	require.NoError(t, err)
	assert.Equal(t, "oauth@example.com", res.User.Email)
	assert.Equal(t, "google", res.User.Provider)
	assert.NotNil(t, res.User.EmailVerified)
	assert.NotEmpty(t, res.Token)

	again, err := f.svc.OAuthLogin(ctx, "google", "tok")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)

	_, err = f.svc.Login(ctx, LoginInput{Email: "oauth@example.com", Password: "anything"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = f.svc.OAuthLogin(ctx, "myspace", "tok")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	_, err = f.svc.OAuthLogin(ctx, "broken", "tok")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestPasswordReset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.SeedUser(t, f.db, "forgot@example.com", models.RoleUser)

	err := f.svc.RequestPasswordReset(ctx, "nobody@example.com")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "Forgot@example.com"))
	var rt models.PasswordResetToken
	require.NoError(t, f.db.Where("email = ?", "forgot@example.com").First(&rt).Error)
	assert.Contains(t, f.mails.Last().Text, rt.Token)

	err = f.svc.ResetPassword(ctx, ResetInput{Token: rt.Token, Password: "brandnew", ConfirmPassword: "different"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, f.svc.ResetPassword(ctx, ResetInput{Token: rt.Token, Password: "brandnew", ConfirmPassword: "brandnew"}))
	_, err = f.svc.Login(ctx, LoginInput{Email: "forgot@example.com", Password: "brandnew"})
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, ResetInput{Token: rt.Token, Password: "again12", ConfirmPassword: "again12"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPasswordResetThrottled(t *testing.T) {
	f := setup(t)
	f.svc.throttle = auth.NewThrottle(time.Hour, 1)
	testutil.SeedUser(t, f.db, "spam@example.com", models.RoleUser)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "spam@example.com"))
	err := f.svc.RequestPasswordReset(context.Background(), "spam@example.com")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Len(t, f.mails.Messages(), 1)
}
