package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/repositories"
	"voyage/internal/utils"
)

const defaultShareTTL = 24 * time.Hour

type TripService struct {
	Trips    repositories.TripRepository
	Steps    repositories.StepRepository
	Shares   repositories.ShareStore
	Verifier StepVerifier

	ShareTTL          time.Duration
	VerifyConcurrency int
	Now               func() time.Time
}

func NewTripService(db *sql.DB, shares repositories.ShareStore, verifier StepVerifier, shareTTL time.Duration, concurrency int) TripService {
	if shares == nil {
		shares = repositories.SQLShareStore{DB: db}
	}
	return TripService{
		Trips:             repositories.TripRepository{DB: db},
		Steps:             repositories.StepRepository{DB: db},
		Shares:            shares,
		Verifier:          verifier,
		ShareTTL:          shareTTL,
		VerifyConcurrency: concurrency,
	}
}

func (s TripService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// access levels for load
const (
	accessRead  = iota // owner or admin
	accessWrite        // owner only
)

func (s TripService) load(ctx context.Context, rc domain.RequestContext, id int64, level int) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	t, err := s.Trips.GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, err
	}
	owner := t.OwnerID == int64(rc.UserID)
	if owner || (level == accessRead && rc.IsAdmin()) {
		return t, nil
	}
	return models.Trip{}, domain.ForbiddenError{Msg: "not allowed to access this trip"}
}

func (s TripService) loadWritable(ctx context.Context, rc domain.RequestContext, id int64) (models.Trip, error) {
	t, err := s.load(ctx, rc, id, accessWrite)
	if err != nil {
		return models.Trip{}, err
	}
	if t.IsShareSnapshot() {
		return models.Trip{}, domain.ConflictError{Resource: "trip", Msg: "shared trips are read-only"}
	}
	return t, nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domain.ValidationError{Field: "endDate", Msg: "must not be before startDate"}
	}
	return nil
}

func (s TripService) ListAll(ctx context.Context) ([]models.Trip, error) {
	return s.Trips.ListAll(ctx)
}

func (s TripService) ListMine(ctx context.Context, rc domain.RequestContext) ([]models.Trip, error) {
	return s.Trips.ListByOwner(ctx, int64(rc.UserID))
}

func (s TripService) Create(ctx context.Context, rc domain.RequestContext, in models.TripInput) (models.Trip, error) {
	name := utils.NormalizeSpace(utils.SanitizeText(in.Name))
	if name == "" {
		return models.Trip{}, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if err := validateDates(in.StartDate, in.EndDate); err != nil {
		return models.Trip{}, err
	}
	return s.Trips.Create(ctx, models.Trip{
		OwnerID:     int64(rc.UserID),
		Name:        name,
		Description: utils.SanitizeText(in.Description),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	})
}

// Get returns the trip with its steps.
func (s TripService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.Trip, error) {
	t, err := s.load(ctx, rc, id, accessRead)
	if err != nil {
		return models.Trip{}, err
	}
	steps, err := s.Steps.ListByTrip(ctx, t.ID)
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	t.Steps = steps
	return t, nil
}

func (s TripService) Update(ctx context.Context, rc domain.RequestContext, id int64, upd models.TripUpdate) (models.Trip, error) {
	t, err := s.loadWritable(ctx, rc, id)
	if err != nil {
		return models.Trip{}, err
	}
	if upd.Name != nil {
		name := utils.NormalizeSpace(utils.SanitizeText(*upd.Name))
		if name == "" {
			return models.Trip{}, domain.ValidationError{Field: "name", Msg: "is required"}
		}
		t.Name = name
	}
	if upd.Description != nil {
		t.Description = utils.SanitizeText(*upd.Description)
	}
	if upd.StartDate != nil {
		t.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		t.EndDate = upd.EndDate
	}
	if err := validateDates(t.StartDate, t.EndDate); err != nil {
		return models.Trip{}, err
	}
	return s.Trips.Update(ctx, t)
}

func (s TripService) Delete(ctx context.Context, rc domain.RequestContext, id int64) error {
	t, err := s.load(ctx, rc, id, accessRead)
	if err != nil {
		return err
	}
	return s.Trips.Delete(ctx, t.ID)
}

func (s TripService) ListSteps(ctx context.Context, rc domain.RequestContext, tripID int64) ([]models.Step, error) {
	t, err := s.load(ctx, rc, tripID, accessRead)
	if err != nil {
		return nil, err
	}
	return s.Steps.ListByTrip(ctx, t.ID)
}

func (s TripService) GetStep(ctx context.Context, rc domain.RequestContext, tripID, stepID int64) (models.Step, error) {
	t, err := s.load(ctx, rc, tripID, accessRead)
	if err != nil {
		return models.Step{}, err
	}
	return s.Steps.Get(ctx, t.ID, stepID)
}

func (s TripService) AddStep(ctx context.Context, rc domain.RequestContext, tripID int64, in models.StepInput) (models.Step, error) {
	t, err := s.loadWritable(ctx, rc, tripID)
	if err != nil {
		return models.Step{}, err
	}
	if !in.Kind.Valid() {
		return models.Step{}, domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown kind %q", in.Kind)}
	}
	if in.RefID < 0 {
		return models.Step{}, domain.ValidationError{Field: "refId", Msg: "must not be negative"}
	}
	if err := validateDates(in.StartsAt, in.EndsAt); err != nil {
		return models.Step{}, err
	}
	if in.Position < 0 {
		return models.Step{}, domain.ValidationError{Field: "position", Msg: "must be positive"}
	}
	title := utils.NormalizeSpace(utils.SanitizeText(in.Title))
	if title == "" {
		title = string(in.Kind)
	}
	return s.Steps.Create(ctx, models.Step{
		TripID:   t.ID,
		Position: in.Position,
		Kind:     in.Kind,
		RefID:    in.RefID,
		Title:    title,
		StartsAt: in.StartsAt,
		EndsAt:   in.EndsAt,
		Notes:    utils.SanitizeText(in.Notes),
		Status:   models.StepPending,
	})
}

func (s TripService) UpdateStep(ctx context.Context, rc domain.RequestContext, tripID, stepID int64, upd models.StepUpdate) (models.Step, error) {
	t, err := s.loadWritable(ctx, rc, tripID)
	if err != nil {
		return models.Step{}, err
	}
	return s.Steps.Update(ctx, t.ID, stepID, func(current models.Step) (models.Step, error) {
		return applyStepUpdate(current, upd)
	})
}

// applyStepUpdate merges upd into current. Pointing the step at another
// record resets its verification.
func applyStepUpdate(current models.Step, upd models.StepUpdate) (models.Step, error) {
	next := current
	refChanged := false
	if upd.Kind != nil {
		if !upd.Kind.Valid() {
			return models.Step{}, domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown kind %q", *upd.Kind)}
		}
		refChanged = refChanged || *upd.Kind != current.Kind
		next.Kind = *upd.Kind
	}
	if upd.RefID != nil {
		if *upd.RefID < 0 {
			return models.Step{}, domain.ValidationError{Field: "refId", Msg: "must not be negative"}
		}
		refChanged = refChanged || *upd.RefID != current.RefID
		next.RefID = *upd.RefID
	}
	if upd.Title != nil {
		next.Title = utils.NormalizeSpace(utils.SanitizeText(*upd.Title))
		if next.Title == "" {
			next.Title = string(next.Kind)
		}
	}
	if upd.StartsAt != nil {
		next.StartsAt = upd.StartsAt
	}
	if upd.EndsAt != nil {
		next.EndsAt = upd.EndsAt
	}
	if upd.Notes != nil {
		next.Notes = utils.SanitizeText(*upd.Notes)
	}
	if upd.Position != nil {
		if *upd.Position <= 0 {
			return models.Step{}, domain.ValidationError{Field: "position", Msg: "must be positive"}
		}
		next.Position = *upd.Position
	}
	if err := validateDates(next.StartsAt, next.EndsAt); err != nil {
		return models.Step{}, err
	}
	if refChanged {
		next.Status = models.StepPending
		next.VerifiedAt = nil
	}
	return next, nil
}

func (s TripService) DeleteStep(ctx context.Context, rc domain.RequestContext, tripID, stepID int64) error {
	t, err := s.loadWritable(ctx, rc, tripID)
	if err != nil {
		return err
	}
	return s.Steps.Delete(ctx, t.ID, stepID)
}

// Share freezes a copy of the trip and returns a code that lets others import it.
func (s TripService) Share(ctx context.Context, rc domain.RequestContext, id int64) (models.ShareCode, error) {
	t, err := s.load(ctx, rc, id, accessWrite)
	if err != nil {
		return models.ShareCode{}, err
	}
	if t.IsShareSnapshot() {
		return models.ShareCode{}, domain.ConflictError{Resource: "trip", Msg: "a shared copy cannot be shared again"}
	}

	ttl := s.ShareTTL
	if ttl <= 0 {
		ttl = defaultShareTTL
	}
	expires := s.now().Add(ttl).Truncate(time.Second)
	source := t.ID
	snapshot, err := s.Trips.Duplicate(ctx, t, models.Trip{
		OwnerID:        t.OwnerID,
		Name:           t.Name,
		Description:    t.Description,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		SourceTripID:   &source,
		ShareExpiresAt: &expires,
	})
	if err != nil {
		return models.ShareCode{}, domain.InternalError{Msg: "failed to snapshot trip", Err: err}
	}

	sc := models.ShareCode{
		Code:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		TripID:    snapshot.ID,
		ExpiresAt: expires,
	}
	if err := s.Shares.Save(ctx, sc); err != nil {
		return models.ShareCode{}, domain.InternalError{Msg: "failed to store share code", Err: err}
	}
	if p, ok := s.Shares.(interface {
		PurgeExpired(context.Context, time.Time) (int64, error)
	}); ok {
		if n, err := p.PurgeExpired(ctx, s.now()); err != nil {
			zap.L().Warn("purge share codes failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("purged share codes", zap.Int64("count", n))
		}
	}
	return sc, nil
}

// Import copies the snapshot behind code into a new trip owned by the caller.
func (s TripService) Import(ctx context.Context, rc domain.RequestContext, code string) (models.Trip, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Trip{}, domain.ValidationError{Field: "code", Msg: "is required"}
	}
	sc, err := s.Shares.Lookup(ctx, code)
	if err != nil {
		return models.Trip{}, err
	}
	if !s.now().Before(sc.ExpiresAt) {
		return models.Trip{}, domain.GoneError{Resource: "share code"}
	}
	snapshot, err := s.Trips.GetByID(ctx, sc.TripID)
	if err != nil {
		return models.Trip{}, err
	}

	source := snapshot.ID
	if snapshot.SourceTripID != nil {
		source = *snapshot.SourceTripID
	}
	created, err := s.Trips.Duplicate(ctx, snapshot, models.Trip{
		OwnerID:      int64(rc.UserID),
		Name:         snapshot.Name,
		Description:  snapshot.Description,
		StartDate:    snapshot.StartDate,
		EndDate:      snapshot.EndDate,
		SourceTripID: &source,
	})
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to import trip", Err: err}
	}
	steps, err := s.Steps.ListByTrip(ctx, created.ID)
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	created.Steps = steps
	return created, nil
}

// Verify asks each referenced record's service whether it still holds and
// records the outcome on the steps. Upstream failures leave a step untouched.
func (s TripService) Verify(ctx context.Context, rc domain.RequestContext, id int64) (models.VerificationReport, error) {
	t, err := s.loadWritable(ctx, rc, id)
	if err != nil {
		return models.VerificationReport{}, err
	}
	steps, err := s.Steps.ListByTrip(ctx, t.ID)
	if err != nil {
		return models.VerificationReport{}, domain.InternalError{Err: err}
	}

	report := models.VerificationReport{TripID: t.ID, Steps: []models.StepCheck{}}
	targets := make([]models.Step, 0, len(steps))
	for _, st := range steps {
		if st.RefID > 0 {
			targets = append(targets, st)
		}
	}
	if len(targets) == 0 || s.Verifier == nil {
		return report, nil
	}

	checks := make([]models.StepCheck, len(targets))
	limit := s.VerifyConcurrency
	if limit <= 0 {
		limit = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, st := range targets {
		i, st := i, st // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			check := models.StepCheck{StepID: st.ID, Kind: st.Kind, RefID: st.RefID}
			status, err := s.Verifier.VerifyStep(gctx, st, rc.Token)
			if err != nil {
				check.Status = st.Status
				check.Error = err.Error()
			} else {
				check.Status = status
			}
			checks[i] = check
			return nil
		})
	}
	_ = g.Wait()

	at := s.now()
	for _, c := range checks {
		report.Checked++
		if c.Error != "" {
			report.Failed++
			zap.L().Warn("step verification failed",
				zap.Int64("trip_id", t.ID), zap.Int64("step_id", c.StepID), zap.String("kind", string(c.Kind)), zap.String("error", c.Error))
			report.Steps = append(report.Steps, c)
			continue
		}
		switch c.Status {
		case models.StepOK:
			report.OK++
		case models.StepModified:
			report.Modified++
		case models.StepMissing:
			report.Missing++
		}
		if err := s.Steps.SetStatus(ctx, c.StepID, c.Status, at); err != nil {
			return models.VerificationReport{}, domain.InternalError{Err: err}
		}
		report.Steps = append(report.Steps, c)
	}
	return report, nil
}

// Itinerary renders the trip as a PDF.
func (s TripService) Itinerary(ctx context.Context, rc domain.RequestContext, id int64, requestID string) ([]byte, string, error) {
	t, err := s.Get(ctx, rc, id)
	if err != nil {
		return nil, "", err
	}
	return DocsService{RequestID: requestID}.GenerateItinerary(t)
}
