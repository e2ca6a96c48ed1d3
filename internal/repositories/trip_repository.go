package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "voyage/internal/db"
	"voyage/internal/domain/models"
)

const tripColumns = `id, owner_id, name, description, start_date, end_date, source_trip_id, share_expires_at, created_at, updated_at`

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var (
		t                      models.Trip
		start, end, shareUntil sql.NullTime
		source                 sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &start, &end, &source, &shareUntil, &t.CreatedAt, &t.UpdatedAt)
	t.StartDate = intdb.TimePtr(start)
	t.EndDate = intdb.TimePtr(end)
	t.SourceTripID = intdb.Int64Ptr(source)
	t.ShareExpiresAt = intdb.TimePtr(shareUntil)
	return t, err
}

func insertTrip(ctx context.Context, q intdb.Querier, t models.Trip) (models.Trip, error) {
	now := time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		INSERT INTO trips (owner_id, name, description, start_date, end_date, source_trip_id, share_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.OwnerID, t.Name, t.Description, intdb.NullTime(t.StartDate), intdb.NullTime(t.EndDate),
		intdb.NullInt64(t.SourceTripID), intdb.NullTime(t.ShareExpiresAt), now, now)
	if err != nil {
		return models.Trip{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Trip{}, err
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func (r TripRepository) Create(ctx context.Context, t models.Trip) (models.Trip, error) {
	return insertTrip(ctx, r.db(), t)
}

func (r TripRepository) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ? LIMIT 1`, id)
	t, err := scanTrip(row)
	if err != nil {
		return models.Trip{}, mapRowErr(err, "trip")
	}
	return t, nil
}

// ListAll returns every trip, share snapshots included.
func (r TripRepository) ListAll(ctx context.Context) ([]models.Trip, error) {
	return r.list(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY id ASC`)
}

// ListByOwner returns the regular trips of ownerID.
func (r TripRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Trip, error) {
	return r.list(ctx, `SELECT `+tripColumns+` FROM trips WHERE owner_id = ? AND share_expires_at IS NULL ORDER BY id ASC`, ownerID)
}

func (r TripRepository) list(ctx context.Context, query string, args ...any) ([]models.Trip, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TripRepository) Update(ctx context.Context, t models.Trip) (models.Trip, error) {
	t.UpdatedAt = time.Now().UTC()
	_, err := r.db().ExecContext(ctx, `
		UPDATE trips
		SET name = ?, description = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.Description, intdb.NullTime(t.StartDate), intdb.NullTime(t.EndDate), t.UpdatedAt, t.ID)
	if err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// Delete removes the trip and its steps.
func (r TripRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_steps WHERE trip_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res, "trip")
	})
}

// Duplicate copies trip src and its steps into a new trip described by dst.
// Step statuses are reset to pending on the copy.
func (r TripRepository) Duplicate(ctx context.Context, src models.Trip, dst models.Trip) (models.Trip, error) {
	var created models.Trip
	err := withTx(ctx, r.db(), func(tx *sql.Tx) error {
		t, err := insertTrip(ctx, tx, dst)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_steps (trip_id, position, kind, ref_id, title, starts_at, ends_at, notes, status)
			SELECT ?, position, kind, ref_id, title, starts_at, ends_at, notes, ?
			FROM trip_steps
			WHERE trip_id = ?
			ORDER BY position ASC
		`, t.ID, string(models.StepPending), src.ID); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return models.Trip{}, err
	}
	return created, nil
}
