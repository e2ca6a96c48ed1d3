package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/providers"
	"voyage/internal/repositories"
	"voyage/internal/utils"
)

const (
	VerifyUnchanged = "unchanged"
	VerifyModified  = "modified"
)

// TravelVerification is the outcome of re-checking a saved travel upstream.
type TravelVerification struct {
	Status  string               `json:"status"`
	Travel  models.Travel        `json:"travel"`
	Changes []models.FieldChange `json:"changes,omitempty"`
}

type TravelService struct {
	Travels   repositories.TravelRepository
	Providers *providers.Registry
}

func NewTravelService(db *sql.DB, reg *providers.Registry) TravelService {
	if reg == nil {
		reg = providers.NewRegistry()
	}
	return TravelService{Travels: repositories.TravelRepository{DB: db}, Providers: reg}
}

func (s TravelService) registry() *providers.Registry {
	if s.Providers == nil {
		return providers.NewRegistry()
	}
	return s.Providers
}

func validateTravelSearch(q models.TravelSearch) error {
	if strings.TrimSpace(q.FromCity) == "" {
		return domain.ValidationError{Field: "from_city", Msg: "is required"}
	}
	if strings.TrimSpace(q.ToCity) == "" {
		return domain.ValidationError{Field: "to_city", Msg: "is required"}
	}
	if q.Departure.IsZero() {
		return domain.ValidationError{Field: "departure", Msg: "is required"}
	}
	if q.Arrival.IsZero() {
		return domain.ValidationError{Field: "arrival", Msg: "is required"}
	}
	if q.Arrival.Before(q.Departure) {
		return domain.ValidationError{Field: "arrival", Msg: "must not be before departure"}
	}
	if err := validateParty(q.NbAdults, q.NbChildren); err != nil {
		return err
	}
	if err := checkFloatRange("avis", q.MinAvis, q.MaxAvis); err != nil {
		return err
	}
	return checkPriceRange(q.MinPrice, q.MaxPrice)
}

// Search asks every provider concurrently and merges their offers, cheapest
// first. A failing provider is skipped; all of them failing is an upstream error.
func (s TravelService) Search(ctx context.Context, q models.TravelSearch) ([]models.TravelOffer, error) {
	if err := validateTravelSearch(q); err != nil {
		return nil, err
	}
	all := s.registry().All()
	if len(all) == 0 {
		return []models.TravelOffer{}, nil
	}

	results := make([][]models.TravelOffer, len(all))
	errs := make([]error, len(all))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range all {
		i, p := i, p // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			offers, err := p.Search(gctx, q)
			if err != nil {
				errs[i] = err
				zap.L().Warn("travel provider search failed", zap.String("provider", p.Name()), zap.Error(err))
				return nil
			}
			results[i] = offers
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(all) {
		return nil, domain.UpstreamError{Service: "travel providers", Err: errors.Join(errs...)}
	}

	out := []models.TravelOffer{}
	for _, offers := range results {
		for _, o := range offers {
			if q.Matches(o) {
				out = append(out, o)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Price.Equal(out[j].Price) {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Departure.Before(out[j].Departure)
	})
	return out, nil
}

func (s TravelService) List(ctx context.Context) ([]models.Travel, error) {
	return s.Travels.List(ctx)
}

// Get returns a saved travel to an admin or to the account that saved it.
func (s TravelService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.Travel, error) {
	if id <= 0 {
		return models.Travel{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	t, err := s.Travels.GetByID(ctx, id)
	if err != nil {
		return models.Travel{}, err
	}
	if !rc.IsAdmin() && t.CreatedBy != int64(rc.UserID) {
		return models.Travel{}, domain.ForbiddenError{Msg: "not allowed to access this travel"}
	}
	return t, nil
}

func (s TravelService) Create(ctx context.Context, rc domain.RequestContext, in models.Travel) (models.Travel, error) {
	in.FromCity = utils.NormalizeSpace(utils.SanitizeText(in.FromCity))
	in.ToCity = utils.NormalizeSpace(utils.SanitizeText(in.ToCity))
	in.FromAirport = strings.ToUpper(strings.TrimSpace(in.FromAirport))
	in.ToAirport = strings.ToUpper(strings.TrimSpace(in.ToAirport))
	in.Cabin = utils.TrimOrEmpty(in.Cabin)
	in.TravelID = utils.TrimOrEmpty(in.TravelID)
	in.TravelURL = utils.TrimOrEmpty(in.TravelURL)
	in.Service = strings.ToUpper(strings.TrimSpace(in.Service))
	if err := validateStruct(in); err != nil {
		return models.Travel{}, err
	}
	if in.Price.IsNegative() {
		return models.Travel{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if _, ok := s.registry().Get(in.Service); !ok {
		return models.Travel{}, domain.ValidationError{Field: "service", Msg: fmt.Sprintf("unknown provider %q", in.Service)}
	}
	in.ID = 0
	in.CreatedBy = int64(rc.UserID)
	return s.Travels.Create(ctx, in)
}

// Verify re-reads the offer behind a saved travel. A vanished offer deletes
// the record and reports NotFound; a changed one is written back.
func (s TravelService) Verify(ctx context.Context, id int64) (TravelVerification, error) {
	if id <= 0 {
		return TravelVerification{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	t, err := s.Travels.GetByID(ctx, id)
	if err != nil {
		return TravelVerification{}, err
	}
	p, ok := s.registry().Get(t.Service)
	if !ok {
		return TravelVerification{}, domain.UpstreamError{Service: t.Service, Err: fmt.Errorf("provider not configured")}
	}

	offer, err := p.Offer(ctx, t.TravelID)
	if errors.Is(err, providers.ErrOfferGone) {
		if err := s.Travels.Delete(ctx, t.ID); err != nil && !domain.IsNotFound(err) {
			return TravelVerification{}, domain.InternalError{Err: err}
		}
		zap.L().Info("saved travel no longer offered", zap.Int64("travel_id", t.ID), zap.String("service", t.Service))
		return TravelVerification{}, domain.NotFoundError{Resource: "travel", Err: err}
	}
	if err != nil {
		return TravelVerification{}, domain.UpstreamError{Service: t.Service, Err: err}
	}

	updated, changes := applyOffer(t, offer)
	if len(changes) == 0 {
		return TravelVerification{Status: VerifyUnchanged, Travel: t}, nil
	}
	saved, err := s.Travels.Update(ctx, updated)
	if err != nil {
		return TravelVerification{}, domain.InternalError{Err: err}
	}
	return TravelVerification{Status: VerifyModified, Travel: saved, Changes: changes}, nil
}

// applyOffer copies the offer fields the provider filled in onto t and
// lists what changed. Empty offer fields are treated as unknown.
func applyOffer(t models.Travel, o models.TravelOffer) (models.Travel, []models.FieldChange) {
	changes := []models.FieldChange{}
	str := func(field string, cur *string, next string) {
		next = strings.TrimSpace(next)
		if next != "" && next != *cur {
			changes = append(changes, models.FieldChange{Field: field, From: *cur, To: next})
			*cur = next
		}
	}
	tm := func(field string, cur *time.Time, next time.Time) {
		if !next.IsZero() && !next.Equal(*cur) {
			changes = append(changes, models.FieldChange{Field: field, From: cur.UTC().Format(time.RFC3339), To: next.UTC().Format(time.RFC3339)})
			*cur = next.UTC()
		}
	}
	num := func(field string, cur *int, next int) {
		if next > 0 && next != *cur {
			changes = append(changes, models.FieldChange{Field: field, From: strconv.Itoa(*cur), To: strconv.Itoa(next)})
			*cur = next
		}
	}

	str("from_city", &t.FromCity, o.FromCity)
	str("from_airport", &t.FromAirport, o.FromAirport)
	str("to_city", &t.ToCity, o.ToCity)
	str("to_airport", &t.ToAirport, o.ToAirport)
	tm("departure", &t.Departure, o.Departure)
	tm("arrival", &t.Arrival, o.Arrival)
	// prices are stored with cents precision
	if price := o.Price.Round(2); !price.Equal(t.Price.Round(2)) {
		changes = append(changes, models.FieldChange{Field: "price", From: utils.FormatMoney(t.Price), To: utils.FormatMoney(price)})
		t.Price = price
	}
	if o.Avis > 0 && o.Avis != t.Avis {
		changes = append(changes, models.FieldChange{
			Field: "avis",
			From:  strconv.FormatFloat(t.Avis, 'f', -1, 64),
			To:    strconv.FormatFloat(o.Avis, 'f', -1, 64),
		})
		t.Avis = o.Avis
	}
	num("nb_adults", &t.NbAdults, o.NbAdults)
	num("nb_children", &t.NbChildren, o.NbChildren)
	str("cabin", &t.Cabin, o.Cabin)
	str("travel_url", &t.TravelURL, o.TravelURL)
	return t, changes
}

func validateParty(adults, children int) error {
	if adults < 1 {
		return domain.ValidationError{Field: "nb_adults", Msg: "must be at least 1"}
	}
	if children < 0 {
		return domain.ValidationError{Field: "nb_children", Msg: "must not be negative"}
	}
	return nil
}

func checkFloatRange(field string, min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return domain.ValidationError{Field: "min_" + field, Msg: "must not exceed max_" + field}
	}
	return nil
}

func checkPriceRange(min, max *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return domain.ValidationError{Field: "min_price", Msg: "must not be negative"}
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return domain.ValidationError{Field: "min_price", Msg: "must not exceed max_price"}
	}
	return nil
}
