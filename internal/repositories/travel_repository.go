package repositories

import (
	"context"
	"database/sql"
	"time"

	"voyage/internal/domain/models"
	"voyage/internal/utils"
)

const travelColumns = `id, from_city, from_airport, to_city, to_airport, departure, arrival, price, avis, nb_adults, nb_children, cabin, travel_id, travel_url, service, created_by, created_at, updated_at`

type TravelRepository struct {
	DB *sql.DB
}

func (r TravelRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanTravel(row interface{ Scan(...any) error }) (models.Travel, error) {
	var t models.Travel
	err := row.Scan(&t.ID, &t.FromCity, &t.FromAirport, &t.ToCity, &t.ToAirport, &t.Departure, &t.Arrival,
		&t.Price, &t.Avis, &t.NbAdults, &t.NbChildren, &t.Cabin, &t.TravelID, &t.TravelURL, &t.Service,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r TravelRepository) Create(ctx context.Context, t models.Travel) (models.Travel, error) {
	now := time.Now().UTC()
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO travels (from_city, from_airport, to_city, to_airport, departure, arrival, price, avis,
			nb_adults, nb_children, cabin, travel_id, travel_url, service, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.FromCity, t.FromAirport, t.ToCity, t.ToAirport, t.Departure.UTC(), t.Arrival.UTC(), utils.FormatMoney(t.Price), t.Avis,
		t.NbAdults, t.NbChildren, t.Cabin, t.TravelID, t.TravelURL, t.Service, t.CreatedBy, now, now)
	if err != nil {
		return models.Travel{}, mapWriteErr(err, "travel", "travel already saved for this service")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Travel{}, err
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func (r TravelRepository) GetByID(ctx context.Context, id int64) (models.Travel, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+travelColumns+` FROM travels WHERE id = ? LIMIT 1`, id)
	t, err := scanTravel(row)
	if err != nil {
		return models.Travel{}, mapRowErr(err, "travel")
	}
	return t, nil
}

func (r TravelRepository) List(ctx context.Context) ([]models.Travel, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+travelColumns+` FROM travels ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Travel{}
	for rows.Next() {
		t, err := scanTravel(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the offer fields of t after a verification found changes.
func (r TravelRepository) Update(ctx context.Context, t models.Travel) (models.Travel, error) {
	t.UpdatedAt = time.Now().UTC()
	_, err := r.db().ExecContext(ctx, `
		UPDATE travels
		SET from_city = ?, from_airport = ?, to_city = ?, to_airport = ?, departure = ?, arrival = ?,
			price = ?, avis = ?, nb_adults = ?, nb_children = ?, cabin = ?, travel_url = ?, updated_at = ?
		WHERE id = ?
	`, t.FromCity, t.FromAirport, t.ToCity, t.ToAirport, t.Departure.UTC(), t.Arrival.UTC(),
		utils.FormatMoney(t.Price), t.Avis, t.NbAdults, t.NbChildren, t.Cabin, t.TravelURL, t.UpdatedAt, t.ID)
	if err != nil {
		return models.Travel{}, err
	}
	return t, nil
}

func (r TravelRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM travels WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "travel")
}
