package services

import (
	"context"
	"database/sql"
	"strings"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/repositories"
	"voyage/internal/utils"
)

func requireCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return domain.ValidationError{Field: "city", Msg: "is required"}
	}
	return nil
}

func validID(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return nil
}

// SleepService serves accommodation offers.
type SleepService struct {
	Repo repositories.SleepRepository
}

func NewSleepService(db *sql.DB) SleepService {
	return SleepService{Repo: repositories.SleepRepository{DB: db}}
}

func (s SleepService) Search(ctx context.Context, f models.SleepSearch) ([]models.Sleep, error) {
	if err := requireCity(f.City); err != nil {
		return nil, err
	}
	if err := validateParty(f.NbAdults, f.NbChildren); err != nil {
		return nil, err
	}
	if f.Checkin.IsZero() {
		return nil, domain.ValidationError{Field: "checkin", Msg: "is required"}
	}
	if f.Checkout.IsZero() {
		return nil, domain.ValidationError{Field: "checkout", Msg: "is required"}
	}
	if !f.Checkout.After(f.Checkin) {
		return nil, domain.ValidationError{Field: "checkout", Msg: "must be after checkin"}
	}
	if err := checkPriceRange(f.MinPrice, f.MaxPrice); err != nil {
		return nil, err
	}
	f.City = utils.NormalizeSpace(f.City)
	return s.Repo.Search(ctx, f)
}

func (s SleepService) List(ctx context.Context) ([]models.Sleep, error) {
	return s.Repo.List(ctx)
}

func (s SleepService) Get(ctx context.Context, id int64) (models.Sleep, error) {
	if err := validID(id); err != nil {
		return models.Sleep{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s SleepService) Create(ctx context.Context, in models.Sleep) (models.Sleep, error) {
	in.Title = utils.NormalizeSpace(utils.SanitizeText(in.Title))
	in.Type = utils.NormalizeSpace(utils.SanitizeText(in.Type))
	in.City = utils.NormalizeSpace(utils.SanitizeText(in.City))
	in.Country = utils.NormalizeSpace(utils.SanitizeText(in.Country))
	in.Zip = utils.TrimOrEmpty(in.Zip)
	in.Service = utils.TrimOrEmpty(in.Service)
	in.PhotoURL = utils.TrimOrEmpty(in.PhotoURL)
	in.Description = utils.SanitizeText(in.Description)
	if err := validateStruct(in); err != nil {
		return models.Sleep{}, err
	}
	if in.Price.IsNegative() {
		return models.Sleep{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	in.ID = 0
	return s.Repo.Create(ctx, in)
}

// VenueService serves restaurants (eat) and bars (drink).
type VenueService struct {
	Repo repositories.VenueRepository
}

func NewEatService(db *sql.DB) VenueService {
	return VenueService{Repo: repositories.NewEatRepository(db)}
}

func NewDrinkService(db *sql.DB) VenueService {
	return VenueService{Repo: repositories.NewDrinkRepository(db)}
}

func (s VenueService) Search(ctx context.Context, f models.VenueSearch) ([]models.Venue, error) {
	if err := requireCity(f.City); err != nil {
		return nil, err
	}
	if err := validateParty(f.NbAdults, f.NbChildren); err != nil {
		return nil, err
	}
	if f.Date.IsZero() {
		return nil, domain.ValidationError{Field: "date", Msg: "is required"}
	}
	if err := checkFloatRange("avis", f.MinAvis, f.MaxAvis); err != nil {
		return nil, err
	}
	f.City = utils.NormalizeSpace(f.City)
	return s.Repo.Search(ctx, f)
}

func (s VenueService) List(ctx context.Context) ([]models.Venue, error) {
	return s.Repo.List(ctx)
}

func (s VenueService) Get(ctx context.Context, id int64) (models.Venue, error) {
	if err := validID(id); err != nil {
		return models.Venue{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s VenueService) Create(ctx context.Context, in models.Venue) (models.Venue, error) {
	in.Title = utils.NormalizeSpace(utils.SanitizeText(in.Title))
	in.Address = utils.NormalizeSpace(utils.SanitizeText(in.Address))
	in.City = utils.NormalizeSpace(utils.SanitizeText(in.City))
	in.PhotoURL = utils.TrimOrEmpty(in.PhotoURL)
	in.Description = utils.SanitizeText(in.Description)
	if err := validateStruct(in); err != nil {
		return models.Venue{}, err
	}
	in.ID = 0
	return s.Repo.Create(ctx, in)
}

// EnjoyService serves events and activities.
type EnjoyService struct {
	Repo repositories.EnjoyRepository
}

func NewEnjoyService(db *sql.DB) EnjoyService {
	return EnjoyService{Repo: repositories.EnjoyRepository{DB: db}}
}

func (s EnjoyService) Search(ctx context.Context, f models.EnjoySearch) ([]models.Enjoy, error) {
	if err := requireCity(f.City); err != nil {
		return nil, err
	}
	if err := validateParty(f.NbAdults, f.NbChildren); err != nil {
		return nil, err
	}
	if f.Date.IsZero() {
		return nil, domain.ValidationError{Field: "date", Msg: "is required"}
	}
	if err := checkPriceRange(f.MinPrice, f.MaxPrice); err != nil {
		return nil, err
	}
	f.City = utils.NormalizeSpace(f.City)
	return s.Repo.Search(ctx, f)
}

func (s EnjoyService) List(ctx context.Context) ([]models.Enjoy, error) {
	return s.Repo.List(ctx)
}

func (s EnjoyService) Get(ctx context.Context, id int64) (models.Enjoy, error) {
	if err := validID(id); err != nil {
		return models.Enjoy{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s EnjoyService) Create(ctx context.Context, in models.Enjoy) (models.Enjoy, error) {
	in.Title = utils.NormalizeSpace(utils.SanitizeText(in.Title))
	in.Address = utils.NormalizeSpace(utils.SanitizeText(in.Address))
	in.City = utils.NormalizeSpace(utils.SanitizeText(in.City))
	in.URL = utils.TrimOrEmpty(in.URL)
	in.PhotoURL = utils.TrimOrEmpty(in.PhotoURL)
	in.Duration = utils.TrimOrEmpty(in.Duration)
	in.Service = utils.TrimOrEmpty(in.Service)
	in.Description = utils.SanitizeText(in.Description)
	if err := validateStruct(in); err != nil {
		return models.Enjoy{}, err
	}
	if in.Price.IsNegative() {
		return models.Enjoy{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	in.ID = 0
	return s.Repo.Create(ctx, in)
}
