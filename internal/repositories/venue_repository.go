package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"voyage/internal/domain/models"
)

const venueColumns = `id, title, photo_url, address, city, avis, nb_adults, nb_children, description, date`

// VenueRepository serves the eats and drinks tables, which share a layout.
type VenueRepository struct {
	DB       *sql.DB
	Table    string
	Resource string
}

func NewEatRepository(db *sql.DB) VenueRepository {
	return VenueRepository{DB: db, Table: "eats", Resource: "eat"}
}

func NewDrinkRepository(db *sql.DB) VenueRepository {
	return VenueRepository{DB: db, Table: "drinks", Resource: "drink"}
}

func (r VenueRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func (r VenueRepository) table() (string, error) {
	switch r.Table {
	case "eats", "drinks":
		return r.Table, nil
	}
	return "", fmt.Errorf("unknown venue table %q", r.Table)
}

func scanVenue(row interface{ Scan(...any) error }) (models.Venue, error) {
	var v models.Venue
	err := row.Scan(&v.ID, &v.Title, &v.PhotoURL, &v.Address, &v.City, &v.Avis, &v.NbAdults, &v.NbChildren, &v.Description, &v.Date)
	return v, err
}

func (r VenueRepository) Create(ctx context.Context, v models.Venue) (models.Venue, error) {
	table, err := r.table()
	if err != nil {
		return models.Venue{}, err
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO `+table+` (title, photo_url, address, city, avis, nb_adults, nb_children, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.Title, v.PhotoURL, v.Address, v.City, v.Avis, v.NbAdults, v.NbChildren, v.Description, v.Date.UTC())
	if err != nil {
		return models.Venue{}, err
	}
	v.ID, err = res.LastInsertId()
	if err != nil {
		return models.Venue{}, err
	}
	return v, nil
}

func (r VenueRepository) GetByID(ctx context.Context, id int64) (models.Venue, error) {
	table, err := r.table()
	if err != nil {
		return models.Venue{}, err
	}
	row := r.db().QueryRowContext(ctx, `SELECT `+venueColumns+` FROM `+table+` WHERE id = ? LIMIT 1`, id)
	v, err := scanVenue(row)
	if err != nil {
		return models.Venue{}, mapRowErr(err, r.Resource)
	}
	return v, nil
}

func (r VenueRepository) List(ctx context.Context) ([]models.Venue, error) {
	table, err := r.table()
	if err != nil {
		return nil, err
	}
	return r.query(ctx, `SELECT `+venueColumns+` FROM `+table+` ORDER BY id ASC`)
}

// Search returns venues in the city that seat the party and are listed on or before the date.
func (r VenueRepository) Search(ctx context.Context, f models.VenueSearch) ([]models.Venue, error) {
	table, err := r.table()
	if err != nil {
		return nil, err
	}
	where := []string{"LOWER(city) = LOWER(?)", "nb_adults >= ?", "nb_children >= ?", "date <= ?"}
	args := []any{f.City, f.NbAdults, f.NbChildren, f.Date.UTC()}
	if f.MinAvis != nil {
		where = append(where, "avis >= ?")
		args = append(args, *f.MinAvis)
	}
	if f.MaxAvis != nil {
		where = append(where, "avis <= ?")
		args = append(args, *f.MaxAvis)
	}
	return r.query(ctx, `SELECT `+venueColumns+` FROM `+table+` WHERE `+strings.Join(where, " AND ")+` ORDER BY avis DESC, id ASC`, args...)
}

func (r VenueRepository) query(ctx context.Context, query string, args ...any) ([]models.Venue, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
