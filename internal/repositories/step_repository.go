package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "voyage/internal/db"
	"voyage/internal/domain/models"
)

const stepColumns = `id, trip_id, position, kind, ref_id, title, starts_at, ends_at, notes, status, verified_at`

// StepRepository keeps trip_steps positions dense and 1-based.
type StepRepository struct {
	DB *sql.DB
}

func (r StepRepository) db() *sql.DB {
	return pickDB(r.DB)
}

func scanStep(row interface{ Scan(...any) error }) (models.Step, error) {
	var (
		s                    models.Step
		kind, status         string
		starts, ends, verify sql.NullTime
	)
	err := row.Scan(&s.ID, &s.TripID, &s.Position, &kind, &s.RefID, &s.Title, &starts, &ends, &s.Notes, &status, &verify)
	s.Kind = models.StepKind(kind)
	s.Status = models.StepStatus(status)
	s.StartsAt = intdb.TimePtr(starts)
	s.EndsAt = intdb.TimePtr(ends)
	s.VerifiedAt = intdb.TimePtr(verify)
	return s, err
}

func (r StepRepository) ListByTrip(ctx context.Context, tripID int64) ([]models.Step, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+stepColumns+` FROM trip_steps WHERE trip_id = ? ORDER BY position ASC, id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Step{}
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r StepRepository) Get(ctx context.Context, tripID, stepID int64) (models.Step, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+stepColumns+` FROM trip_steps WHERE id = ? AND trip_id = ? LIMIT 1`, stepID, tripID)
	s, err := scanStep(row)
	if err != nil {
		return models.Step{}, mapRowErr(err, "step")
	}
	return s, nil
}

// lockTrip takes the trip row lock that serialises position changes for its steps.
func lockTrip(ctx context.Context, tx *sql.Tx, tripID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM trips WHERE id = ? FOR UPDATE`, tripID).Scan(&id)
	return mapRowErr(err, "trip")
}

func countSteps(ctx context.Context, q intdb.Querier, tripID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM trip_steps WHERE trip_id = ?`, tripID).Scan(&n)
	return n, err
}

func getStepTx(ctx context.Context, tx *sql.Tx, tripID, stepID int64) (models.Step, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+stepColumns+` FROM trip_steps WHERE id = ? AND trip_id = ? LIMIT 1`, stepID, tripID)
	s, err := scanStep(row)
	if err != nil {
		return models.Step{}, mapRowErr(err, "step")
	}
	return s, nil
}

// clampPosition maps a requested position onto [1, max]; 0 or out of range means max.
func clampPosition(pos, max int) int {
	if pos <= 0 || pos > max {
		return max
	}
	return pos
}

// Create inserts s at s.Position (appending when zero) and shifts later steps down.
func (r StepRepository) Create(ctx context.Context, s models.Step) (models.Step, error) {
	err := withTx(ctx, r.db(), func(tx *sql.Tx) error {
		if err := lockTrip(ctx, tx, s.TripID); err != nil {
			return err
		}
		n, err := countSteps(ctx, tx, s.TripID)
		if err != nil {
			return err
		}
		s.Position = clampPosition(s.Position, n+1)
		if s.Position <= n {
			if _, err := tx.ExecContext(ctx, `
				UPDATE trip_steps SET position = position + 1
				WHERE trip_id = ? AND position >= ?
			`, s.TripID, s.Position); err != nil {
				return err
			}
		}
		if s.Status == "" {
			s.Status = models.StepPending
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO trip_steps (trip_id, position, kind, ref_id, title, starts_at, ends_at, notes, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.TripID, s.Position, string(s.Kind), s.RefID, s.Title, intdb.NullTime(s.StartsAt), intdb.NullTime(s.EndsAt), s.Notes, string(s.Status))
		if err != nil {
			return err
		}
		s.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return s, nil
}

// Update reads the step under the trip lock, lets apply derive the new
// version, then moves it to its new position, shifting the steps in between.
// Errors from apply are returned as is.
func (r StepRepository) Update(ctx context.Context, tripID, stepID int64, apply func(models.Step) (models.Step, error)) (models.Step, error) {
	var s models.Step
	err := withTx(ctx, r.db(), func(tx *sql.Tx) error {
		if err := lockTrip(ctx, tx, tripID); err != nil {
			return err
		}
		current, err := getStepTx(ctx, tx, tripID, stepID)
		if err != nil {
			return err
		}
		if s, err = apply(current); err != nil {
			return err
		}
		s.ID, s.TripID = current.ID, current.TripID

		n, err := countSteps(ctx, tx, tripID)
		if err != nil {
			return err
		}
		s.Position = clampPosition(s.Position, n)
		switch {
		case s.Position < current.Position:
			_, err = tx.ExecContext(ctx, `
				UPDATE trip_steps SET position = position + 1
				WHERE trip_id = ? AND position >= ? AND position < ?
			`, tripID, s.Position, current.Position)
		case s.Position > current.Position:
			_, err = tx.ExecContext(ctx, `
				UPDATE trip_steps SET position = position - 1
				WHERE trip_id = ? AND position > ? AND position <= ?
			`, tripID, current.Position, s.Position)
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE trip_steps
			SET position = ?, kind = ?, ref_id = ?, title = ?, starts_at = ?, ends_at = ?, notes = ?, status = ?, verified_at = ?
			WHERE id = ? AND trip_id = ?
		`, s.Position, string(s.Kind), s.RefID, s.Title, intdb.NullTime(s.StartsAt), intdb.NullTime(s.EndsAt), s.Notes, string(s.Status),
			intdb.NullTime(s.VerifiedAt), s.ID, tripID)
		return err
	})
	if err != nil {
		return models.Step{}, err
	}
	return s, nil
}

// Delete removes a step and closes the gap it leaves.
func (r StepRepository) Delete(ctx context.Context, tripID, stepID int64) error {
	return withTx(ctx, r.db(), func(tx *sql.Tx) error {
		if err := lockTrip(ctx, tx, tripID); err != nil {
			return err
		}
		st, err := getStepTx(ctx, tx, tripID, stepID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_steps WHERE id = ? AND trip_id = ?`, st.ID, tripID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE trip_steps SET position = position - 1
			WHERE trip_id = ? AND position > ?
		`, tripID, st.Position)
		return err
	})
}

// SetStatus records the outcome of a verification.
func (r StepRepository) SetStatus(ctx context.Context, stepID int64, status models.StepStatus, at time.Time) error {
	_, err := r.db().ExecContext(ctx, `UPDATE trip_steps SET status = ?, verified_at = ? WHERE id = ?`, string(status), at.UTC(), stepID)
	return err
}
