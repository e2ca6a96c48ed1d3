package services

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/repositories"
)

var userCols = []string{"id", "first_name", "last_name", "email", "password_hash", "role", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testUserService(db *sql.DB) UserService {
	return UserService{
		Users:  repositories.UserRepository{DB: db},
		Tokens: NewTokenService("test-secret", time.Hour),
		Cost:   bcrypt.MinCost,
	}
}

func hashFor(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestPasswordValid(t *testing.T) {
	cases := map[string]bool{
		"":            false,
		"Ab1!":        false,
		"abcdefgh":    false,
		"Abcdefgh":    false,
		"Abcdefg1":    false,
		"abcdefg1!":   false,
		"ABCDEFG1!":   false,
		"Abcdefg1!":   true,
		"Pa ssword9":  true,
		"Żółw1234#xY": true,
		"Abcdefg1!" + strings.Repeat("x", 63): true,
		"Abcdefg1!" + strings.Repeat("x", 64): false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, PasswordValid(pw), "password %q", pw)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	svc := testUserService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.UserInput{LastName: "L", Email: "a@b.co", Password: "Abcdefg1!"})
	require.True(t, domain.IsValidation(err))

	_, err = svc.Register(ctx, models.UserInput{FirstName: "F", LastName: "L", Email: "nope", Password: "Abcdefg1!"})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.Register(ctx, models.UserInput{FirstName: "F", LastName: "L", Email: "a@b.co", Password: "weak"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestRegister_OverlongPasswordIsValidationError(t *testing.T) {
	_, err := testUserService(nil).Register(context.Background(), models.UserInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "Abcdefg1!" + strings.Repeat("x", 70),
	})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestHash_TooLongForBcrypt(t *testing.T) {
	_, err := testUserService(nil).hash(strings.Repeat("A", 73))
	assert.True(t, domain.IsValidation(err))
}

func TestRegister_TakenEmailIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?")).
		WithArgs("ada@example.com", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err := testUserService(db).Register(context.Background(), models.UserInput{
		FirstName: "Ada", LastName: "Lovelace", Email: " ADA@example.com ", Password: "Abcdefg1!",
	})
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_CreatesUserRoleEvenWhenAdminRequested(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ada", "Lovelace", "ada@example.com", sqlmock.AnyArg(), "user", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	u, err := testUserService(db).Register(context.Background(), models.UserInput{
		FirstName: "<b>Ada</b>", LastName: "Lovelace", Email: "ada@example.com", Password: "Abcdefg1!", IsAdmin: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Abcdefg1!")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	hash := hashFor(t, "Abcdefg1!")
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(userCols).AddRow(int64(3), "Ada", "Lovelace", "ada@example.com", hash, "admin", now, now)
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ?")).WithArgs("ada@example.com").WillReturnRows(rows())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ?")).WithArgs("ada@example.com").WillReturnRows(rows())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ?")).WithArgs("ghost@example.com").WillReturnRows(sqlmock.NewRows(userCols))

	svc := testUserService(db)
	ctx := context.Background()

	token, u, err := svc.Login(ctx, models.Credentials{Email: "Ada@Example.com", Password: "Abcdefg1!"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	rc, err := svc.Tokens.Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, domain.ID(3), rc.UserID)
	assert.Equal(t, domain.RoleAdmin, rc.Role)
	assert.Equal(t, "ada@example.com", rc.Email)

	_, _, err = svc.Login(ctx, models.Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, domain.IsUnauthorized(err))

	_, _, err = svc.Login(ctx, models.Credentials{Email: "ghost@example.com", Password: "Abcdefg1!"})
	assert.True(t, domain.IsUnauthorized(err))

	_, _, err = svc.Login(ctx, models.Credentials{Email: "ada@example.com"})
	assert.True(t, domain.IsValidation(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSelf_PasswordNeedsOldPassword(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	hash := hashFor(t, "Abcdefg1!")
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(3), "Ada", "Lovelace", "ada@example.com", hash, "user", now, now))
	}
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := testUserService(db)
	ctx := context.Background()
	newPw := "Newpass1!"

	_, err := svc.Update(ctx, 3, models.UserUpdate{Password: &newPw}, true)
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "oldPassword", ve.Field)

	wrong := "Nope1234!"
	_, err = svc.Update(ctx, 3, models.UserUpdate{Password: &newPw, OldPassword: &wrong}, true)
	assert.True(t, domain.IsUnauthorized(err))

	old := "Abcdefg1!"
	u, err := svc.Update(ctx, 3, models.UserUpdate{Password: &newPw, OldPassword: &old}, true)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPw)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRole_UnknownRole(t *testing.T) {
	_, err := testUserService(nil).SetRole(context.Background(), 1, "superuser")
	assert.True(t, domain.IsValidation(err))
}

func TestTokenService_RejectsExpiredAndForeignTokens(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := TokenService{Secret: []byte("s1"), TTL: time.Hour, Now: func() time.Time { return past }}
	token, _, err := issuer.Issue(models.User{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = NewTokenService("s1", time.Hour).Parse(token)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "expired")

	fresh, _, err := NewTokenService("s1", time.Hour).Issue(models.User{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = NewTokenService("other", time.Hour).Parse(fresh)
	assert.True(t, domain.IsUnauthorized(err))

	rc, err := NewTokenService("s1", time.Hour).Parse(fresh)
	require.NoError(t, err)
	assert.Equal(t, fresh, rc.Token)

	_, err = NewTokenService("s1", time.Hour).Parse("Bearer ")
	assert.True(t, domain.IsUnauthorized(err))
}
