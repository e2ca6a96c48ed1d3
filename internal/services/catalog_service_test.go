package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

func TestSleepSearch_Validation(t *testing.T) {
	in := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := NewSleepService(nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		f     models.SleepSearch
		field string
	}{
		{"missing city", models.SleepSearch{NbAdults: 1, Checkin: in, Checkout: in.Add(24 * time.Hour)}, "city"},
		{"no adults", models.SleepSearch{City: "Paris", Checkin: in, Checkout: in.Add(24 * time.Hour)}, "nb_adults"},
		{"negative children", models.SleepSearch{City: "Paris", NbAdults: 1, NbChildren: -1, Checkin: in, Checkout: in.Add(24 * time.Hour)}, "nb_children"},
		{"checkout first", models.SleepSearch{City: "Paris", NbAdults: 1, Checkin: in, Checkout: in}, "checkout"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Search(ctx, c.f)
			var ve domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
		})
	}

	lo, hi := decimal.NewFromInt(100), decimal.NewFromInt(50)
	_, err := svc.Search(ctx, models.SleepSearch{City: "Paris", NbAdults: 1, Checkin: in, Checkout: in.Add(time.Hour), MinPrice: &lo, MaxPrice: &hi})
	assert.True(t, domain.IsValidation(err))
}

func TestSleepCreate_RequiresFieldsAndOrderedStay(t *testing.T) {
	in := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := NewSleepService(nil)

	_, err := svc.Create(context.Background(), models.Sleep{City: "Paris", NbAdults: 1, Checkin: in, Checkout: in.Add(time.Hour)})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = svc.Create(context.Background(), models.Sleep{Title: "Hotel", City: "Paris", NbAdults: 1, Checkin: in, Checkout: in})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "checkout", ve.Field)
}

func TestVenueCreate_SanitizesAndStores(t *testing.T) {
	db, mock := newMockDB(t)
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO eats").
		WithArgs("Chez Paul", "", "1 rue X", "Lyon", 4.5, 4, 2, "Great food", date).
		WillReturnResult(sqlmock.NewResult(3, 1))

	v, err := NewEatService(db).Create(context.Background(), models.Venue{
		Title: " Chez  Paul ", Address: "1 rue X", City: "Lyon", Avis: 4.5, NbAdults: 4, NbChildren: 2,
		Description: "<script>x</script>Great food", Date: date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.ID)
	assert.Equal(t, "Chez Paul", v.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueGet_NotFoundOnDrinks(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM drinks WHERE id = ?")).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewDrinkService(db).Get(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnjoySearch_RequiresDate(t *testing.T) {
	_, err := NewEnjoyService(nil).Search(context.Background(), models.EnjoySearch{City: "Nice", NbAdults: 2})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)
}

func TestEnjoyCreate_NegativePrice(t *testing.T) {
	_, err := NewEnjoyService(nil).Create(context.Background(), models.Enjoy{
		Title: "Jazz", City: "Nice", Date: time.Now(), Price: decimal.NewFromInt(-1),
	})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)
}
