package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"voyage/internal/domain/models"
	"voyage/internal/utils"
)

const enjoyColumns = `id, title, address, city, url, photo_url, date, duration, price, service, description`

type EnjoyRepository struct {
	DB *sql.DB
}

func (r EnjoyRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanEnjoy(row interface{ Scan(...any) error }) (models.Enjoy, error) {
	var e models.Enjoy
	err := row.Scan(&e.ID, &e.Title, &e.Address, &e.City, &e.URL, &e.PhotoURL, &e.Date, &e.Duration, &e.Price, &e.Service, &e.Description)
	return e, err
}

func (r EnjoyRepository) Create(ctx context.Context, e models.Enjoy) (models.Enjoy, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO enjoys (title, address, city, url, photo_url, date, duration, price, service, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Title, e.Address, e.City, e.URL, e.PhotoURL, e.Date.UTC(), e.Duration, utils.FormatMoney(e.Price), e.Service, e.Description)
	if err != nil {
		return models.Enjoy{}, err
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return models.Enjoy{}, err
	}
	return e, nil
}

func (r EnjoyRepository) GetByID(ctx context.Context, id int64) (models.Enjoy, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+enjoyColumns+` FROM enjoys WHERE id = ? LIMIT 1`, id)
	e, err := scanEnjoy(row)
	if err != nil {
		return models.Enjoy{}, mapRowErr(err, "enjoy")
	}
	return e, nil
}

func (r EnjoyRepository) List(ctx context.Context) ([]models.Enjoy, error) {
	return r.query(ctx, `SELECT `+enjoyColumns+` FROM enjoys ORDER BY id ASC`)
}

// Search returns events held in the city on the requested day.
func (r EnjoyRepository) Search(ctx context.Context, f models.EnjoySearch) ([]models.Enjoy, error) {
	day := f.Date.UTC().Truncate(24 * time.Hour)
	where := []string{"LOWER(city) = LOWER(?)", "date >= ?", "date < ?"}
	args := []any{f.City, day, day.Add(24 * time.Hour)}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, utils.FormatMoney(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, utils.FormatMoney(*f.MaxPrice))
	}
	return r.query(ctx, `SELECT `+enjoyColumns+` FROM enjoys WHERE `+strings.Join(where, " AND ")+` ORDER BY date ASC, id ASC`, args...)
}

func (r EnjoyRepository) query(ctx context.Context, query string, args ...any) ([]models.Enjoy, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Enjoy{}
	for rows.Next() {
		e, err := scanEnjoy(rows)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
