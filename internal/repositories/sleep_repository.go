package repositories

import (
	"context"
	"database/sql"
	"strings"

	"voyage/internal/domain/models"
	"voyage/internal/utils"
)

const sleepColumns = `id, title, type, photo_url, city, zip, country, nb_adults, nb_children, avis, description, service, checkin, checkout, price`

type SleepRepository struct {
	DB *sql.DB
}

func (r SleepRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanSleep(row interface{ Scan(...any) error }) (models.Sleep, error) {
	var s models.Sleep
	err := row.Scan(&s.ID, &s.Title, &s.Type, &s.PhotoURL, &s.City, &s.Zip, &s.Country, &s.NbAdults, &s.NbChildren,
		&s.Avis, &s.Description, &s.Service, &s.Checkin, &s.Checkout, &s.Price)
	return s, err
}

func (r SleepRepository) Create(ctx context.Context, s models.Sleep) (models.Sleep, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO sleeps (title, type, photo_url, city, zip, country, nb_adults, nb_children, avis, description, service, checkin, checkout, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.Title, s.Type, s.PhotoURL, s.City, s.Zip, s.Country, s.NbAdults, s.NbChildren, s.Avis, s.Description, s.Service,
		s.Checkin.UTC(), s.Checkout.UTC(), utils.FormatMoney(s.Price))
	if err != nil {
		return models.Sleep{}, err
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return models.Sleep{}, err
	}
	return s, nil
}

func (r SleepRepository) GetByID(ctx context.Context, id int64) (models.Sleep, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+sleepColumns+` FROM sleeps WHERE id = ? LIMIT 1`, id)
	s, err := scanSleep(row)
	if err != nil {
		return models.Sleep{}, mapRowErr(err, "sleep")
	}
	return s, nil
}

func (r SleepRepository) List(ctx context.Context) ([]models.Sleep, error) {
	return r.query(ctx, `SELECT `+sleepColumns+` FROM sleeps ORDER BY id ASC`)
}

// Search returns offers in the city that fit the party and cover the stay.
func (r SleepRepository) Search(ctx context.Context, f models.SleepSearch) ([]models.Sleep, error) {
	where := []string{"LOWER(city) = LOWER(?)", "nb_adults >= ?", "nb_children >= ?", "checkin <= ?", "checkout >= ?"}
	args := []any{f.City, f.NbAdults, f.NbChildren, f.Checkin.UTC(), f.Checkout.UTC()}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, utils.FormatMoney(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, utils.FormatMoney(*f.MaxPrice))
	}
	return r.query(ctx, `SELECT `+sleepColumns+` FROM sleeps WHERE `+strings.Join(where, " AND ")+` ORDER BY price ASC, id ASC`, args...)
}

func (r SleepRepository) query(ctx context.Context, query string, args ...any) ([]models.Sleep, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Sleep{}
	for rows.Next() {
		s, err := scanSleep(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
