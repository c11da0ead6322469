package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/findosh/showroom/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type memUsers struct {
	byID map[uuid.UUID]*models.User
	err  error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.byID[id].PasswordHash = hash
	return nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, _ := m.GetByEmail(ctx, email)
	return u != nil, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T) (*Service, *memUsers, *models.User) {
	t.Helper()

	users := newMemUsers()
	svc := NewService(users, NewTokenIssuer(testSecret), NewPasswordHasher(bcrypt.MinCost))
	user, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		Email:    "Admin@Showroom.test ",
		Password: "correct-horse",
		Name:     "Admin",
	})
	require.NoError(t, err)
	return svc, users, user
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)
	issuer := NewTokenIssuer(testSecret)
	issuer.SetClock(fixedClock(now))

	userID := uuid.New()
	token, err := issuer.Issue(userID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, now.Truncate(time.Second), claims.IssuedAt.Time.UTC())
	assert.Equal(t, 7*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenIssuer_Tamper(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i, name := range []string{"header", "payload", "signature"} {
		t.Run(name, func(t *testing.T) {
			parts := strings.Split(token, ".")
			seg := parts[i]
			for pos := 0; pos < len(seg); pos++ {
				for _, c := range []byte(alphabet) {
					if c == seg[pos] {
						continue
					}
					changed := append([]string(nil), parts...)
					changed[i] = seg[:pos] + string(c) + seg[pos+1:]

					if _, err := issuer.Verify(strings.Join(changed, ".")); !errors.Is(err, ErrInvalidToken) {
						t.Fatalf("Expected tampered %s to be rejected at %d (%q -> %q)", name, pos, seg[pos], c)
					}
				}
			}
		})
	}

	t.Run("other secret", func(t *testing.T) {
		forged, err := NewTokenIssuer("another-secret").Issue(uuid.New())
		require.NoError(t, err)

		_, err = issuer.Verify(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := Claims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		claims := Claims{UserID: uuid.New()}
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.Verify(noExp)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret)
	issuer.SetClock(fixedClock(issuedAt))

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	expiry := issuedAt.Add(TokenLifetime)

	issuer.SetClock(fixedClock(expiry.Add(-time.Second)))
	_, err = issuer.Verify(token)
	assert.NoError(t, err, "one second before exp")

	issuer.SetClock(fixedClock(expiry.Add(time.Second)))
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "one second after exp")
}

func TestTokenIssuer_SegmentCount(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	valid, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tests := map[string]string{
		"zero segments": "",
		"one segment":   parts[0],
		"two segments":  parts[0] + "." + parts[1],
		"four segments": valid + "." + parts[2],
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_Login(t *testing.T) {
	svc, _, user := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, "admin@showroom.test", user.Email)

	res, err := svc.Login(ctx, LoginInput{Email: "ADMIN@showroom.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(TokenLifetime), res.Expires, time.Minute)

	_, err = svc.Login(ctx, LoginInput{Email: "admin@showroom.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@showroom.test", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_CreateAdmin_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, CreateAdminInput{Email: "admin@showroom.test", Password: "long-enough", Name: "Dup"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.CreateAdmin(ctx, CreateAdminInput{Email: "new@showroom.test", Password: "short", Name: "New"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Authenticate(t *testing.T) {
	svc, users, user := newTestService(t)

	token, err := svc.Tokens().Issue(user.ID)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		got, err := svc.Authenticate(r)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		assert.NotNil(t, authenticated(t, svc, r))
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer garbage")
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		assert.Nil(t, authenticated(t, svc, r))
	})

	t.Run("no token", func(t *testing.T) {
		assert.Nil(t, authenticated(t, svc, httptest.NewRequest(http.MethodGet, "/", nil)))
	})

	t.Run("orphaned user", func(t *testing.T) {
		ghost, err := svc.Tokens().Issue(uuid.New())
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+ghost)
		assert.Nil(t, authenticated(t, svc, r))
	})

	t.Run("deleted after issue", func(t *testing.T) {
		delete(users.byID, user.ID)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		assert.Nil(t, authenticated(t, svc, r))
	})
}

func authenticated(t *testing.T, svc *Service, r *http.Request) *models.User {
	t.Helper()
	user, err := svc.Authenticate(r)
	require.NoError(t, err)
	return user
}

func TestService_AuthenticateStoreFailure(t *testing.T) {
	svc, users, user := newTestService(t)

	token, err := svc.Tokens().Issue(user.ID)
	require.NoError(t, err)
	users.err = errors.New("database is locked")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	got, err := svc.Authenticate(r)
	assert.Error(t, err)
	assert.Nil(t, got)

	// Invalid tokens never reach the store.
	r.Header.Set("Authorization", "Bearer garbage")
	got, err = svc.Authenticate(r)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_ChangePassword(t *testing.T) {
	svc, _, user := newTestService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, "wrong", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "correct-horse", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "battery-staple"))

	_, err = svc.Login(ctx, LoginInput{Email: user.Email, Password: "battery-staple"})
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, uuid.New(), "x", "battery-staple")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "bearer   abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, TokenFromRequest(r))
}
