package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/repositories"
	"voyage/internal/utils"
)

type UserService struct {
	Users  repositories.UserRepository
	Tokens TokenService
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewUserService(db *sql.DB, tokens TokenService) UserService {
	return UserService{Users: repositories.UserRepository{DB: db}, Tokens: tokens}
}

func (s UserService) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ValidationError{Field: "password", Msg: "must be at most 72 bytes"}
	}
	if err != nil {
		return "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	return string(h), nil
}

func cleanUserInput(in models.UserInput) models.UserInput {
	in.FirstName = utils.NormalizeSpace(utils.SanitizeText(in.FirstName))
	in.LastName = utils.NormalizeSpace(utils.SanitizeText(in.LastName))
	in.Email = utils.NormalizeEmail(in.Email)
	return in
}

func (s UserService) create(ctx context.Context, in models.UserInput, role domain.Role) (models.User, error) {
	in = cleanUserInput(in)
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}
	taken, err := s.Users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	if taken {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already used"}
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}
	return s.Users.Create(ctx, models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
}

// Register creates a regular account. isAdmin is ignored here.
func (s UserService) Register(ctx context.Context, in models.UserInput) (models.User, error) {
	return s.create(ctx, in, domain.RoleUser)
}

// Create is the admin variant of Register and honours isAdmin.
func (s UserService) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	role := domain.RoleUser
	if in.IsAdmin {
		role = domain.RoleAdmin
	}
	return s.create(ctx, in, role)
}

// Login checks credentials and issues a token.
func (s UserService) Login(ctx context.Context, cred models.Credentials) (string, models.User, error) {
	email := utils.NormalizeEmail(cred.Email)
	if email == "" {
		return "", models.User{}, domain.ValidationError{Field: "email", Msg: "is required"}
	}
	if cred.Password == "" {
		return "", models.User{}, domain.ValidationError{Field: "password", Msg: "is required"}
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, domain.UnauthorizedError{Msg: "invalid email or password"}
		}
		return "", models.User{}, domain.InternalError{Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cred.Password)); err != nil {
		return "", models.User{}, domain.UnauthorizedError{Msg: "invalid email or password"}
	}

	token, _, err := s.Tokens.Issue(u)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

func (s UserService) Get(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return s.Users.GetByID(ctx, id)
}

func (s UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}

// Update applies a partial update. When self is true the caller edits their
// own account and a password change needs the current password.
func (s UserService) Update(ctx context.Context, id int64, upd models.UserUpdate, self bool) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if upd.FirstName != nil {
		v := utils.NormalizeSpace(utils.SanitizeText(*upd.FirstName))
		if v == "" {
			return models.User{}, domain.ValidationError{Field: "firstName", Msg: "is required"}
		}
		u.FirstName = v
	}
	if upd.LastName != nil {
		v := utils.NormalizeSpace(utils.SanitizeText(*upd.LastName))
		if v == "" {
			return models.User{}, domain.ValidationError{Field: "lastName", Msg: "is required"}
		}
		u.LastName = v
	}
	if upd.Email != nil {
		email := utils.NormalizeEmail(*upd.Email)
		if err := Validator().Var(email, "required,email"); err != nil {
			return models.User{}, domain.ValidationError{Field: "email", Msg: ruleMessage("email"), Err: err}
		}
		if email != u.Email {
			taken, err := s.Users.EmailTaken(ctx, email, u.ID)
			if err != nil {
				return models.User{}, domain.InternalError{Err: err}
			}
			if taken {
				return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already used"}
			}
		}
		u.Email = email
	}
	if upd.Password != nil {
		if self {
			if upd.OldPassword == nil || *upd.OldPassword == "" {
				return models.User{}, domain.ValidationError{Field: "oldPassword", Msg: "is required to change the password"}
			}
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(*upd.OldPassword)) != nil {
				return models.User{}, domain.UnauthorizedError{Msg: "old password does not match"}
			}
		}
		if !PasswordValid(*upd.Password) {
			return models.User{}, domain.ValidationError{Field: "password", Msg: ruleMessage("password")}
		}
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = hash
	}

	return s.Users.Update(ctx, u)
}

func (s UserService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return s.Users.Delete(ctx, id)
}

// SetRole assigns a known role.
func (s UserService) SetRole(ctx context.Context, id int64, raw string) (models.User, error) {
	role, ok := domain.ParseRole(raw)
	if !ok {
		return models.User{}, domain.ValidationError{Field: "role", Msg: "unknown role " + strings.TrimSpace(raw)}
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	u.Role = role
	return s.Users.Update(ctx, u)
}

// ResetRole puts the account back to the default role.
func (s UserService) ResetRole(ctx context.Context, id int64) (models.User, error) {
	return s.SetRole(ctx, id, string(domain.RoleUser))
}

// Current resolves the caller; the role is re-read so demotions apply at once.
func (s UserService) Current(ctx context.Context, rc domain.RequestContext) (models.User, error) {
	u, err := s.Users.GetByID(ctx, int64(rc.UserID))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, domain.UnauthorizedError{Msg: "account no longer exists", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

// EnsureAdmin creates or promotes the bootstrap admin account.
func (s UserService) EnsureAdmin(ctx context.Context, in models.UserInput) (models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		if u.Role == domain.RoleAdmin {
			return u, nil
		}
		u.Role = domain.RoleAdmin
		return s.Users.Update(ctx, u)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}
	in.IsAdmin = true
	return s.Create(ctx, in)
}
