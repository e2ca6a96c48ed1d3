package repositories

import (
	"context"
	"database/sql"
	"time"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at, updated_at`

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = domain.Role(role)
	return u, err
}

func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.Role), now, now)
	if err != nil {
		return models.User{}, mapWriteErr(err, "user", "email already used")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, mapRowErr(err, "user")
	}
	return u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, mapRowErr(err, "user")
	}
	return u, nil
}

// EmailTaken reports whether another account (not exceptID) already uses email.
func (r UserRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`, email, exceptID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes the profile, hash and role of u.
func (r UserRepository) Update(ctx context.Context, u models.User) (models.User, error) {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db().ExecContext(ctx, `
		UPDATE users
		SET first_name = ?, last_name = ?, email = ?, password_hash = ?, role = ?, updated_at = ?
		WHERE id = ?
	`, u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.Role), u.UpdatedAt, u.ID)
	if err != nil {
		return models.User{}, mapWriteErr(err, "user", "email already used")
	}
	return u, nil
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}
