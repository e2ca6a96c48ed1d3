package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "voyage/internal/config"
	"voyage/internal/domain/models"
)

func TestHTTPProvider_SearchAndOffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/offers":
			assert.Equal(t, "Paris", r.URL.Query().Get("from_city"))
			assert.Equal(t, "2", r.URL.Query().Get("nb_adults"))
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"from_city": "Paris", "to_city": "Rome", "price": 120.5, "travel_id": "AF1"},
			})
		case "/offers/AF1":
			_ = json.NewEncoder(w).Encode(map[string]any{"from_city": "Paris", "to_city": "Rome", "price": 99, "travel_id": "AF1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider("airfrance", srv.URL+"/", srv.Client())
	require.Equal(t, "AIRFRANCE", p.Name())

	offers, err := p.Search(context.Background(), models.TravelSearch{FromCity: "Paris", ToCity: "Rome", NbAdults: 2})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "AIRFRANCE", offers[0].Service)
	assert.True(t, offers[0].Price.Equal(decimal.RequireFromString("120.5")))

	offer, err := p.Offer(context.Background(), "AF1")
	require.NoError(t, err)
	assert.True(t, offer.Price.Equal(decimal.NewFromInt(99)))

	_, err = p.Offer(context.Background(), "AF2")
	assert.True(t, errors.Is(err, ErrOfferGone))
}

func TestHTTPProvider_ServerErrorIsNotGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider("sncf", srv.URL, srv.Client())
	_, err := p.Offer(context.Background(), "X")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOfferGone))

	_, err = p.Search(context.Background(), models.TravelSearch{})
	require.Error(t, err)
}

func TestAmadeus_SearchUsesBearerTokenAndMapsOffers(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":1799}`))
		case "/v2/shopping/flight-offers":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "CDG", r.URL.Query().Get("originLocationCode"))
			assert.Equal(t, "2024-09-01", r.URL.Query().Get("departureDate"))
			calls++
			// offer ids are renumbered on every response
			_, _ = fmt.Fprintf(w, `{"data":[{"id":"%d","itineraries":[{"segments":[
				{"departure":{"iataCode":"CDG","at":"2024-09-01T08:00:00"},"arrival":{"iataCode":"FRA","at":"2024-09-01T09:10:00"},"carrierCode":"LH","number":"1035"},
				{"departure":{"iataCode":"FRA","at":"2024-09-01T10:00:00"},"arrival":{"iataCode":"FCO","at":"2024-09-01T11:45:00"},"carrierCode":"LH","number":"230"}]}],
				"price":{"currency":"EUR","grandTotal":"210.40"},
				"travelerPricings":[{"fareDetailsBySegment":[{"cabin":"ECONOMY"}]}]}]}`, calls)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := NewAmadeus(context.Background(), srv.URL, "key", "secret", 5*time.Second)
	dep := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	offers, err := a.Search(context.Background(), models.TravelSearch{FromCity: "cdg", ToCity: "fco", Departure: dep, NbAdults: 1})
	require.NoError(t, err)
	require.Len(t, offers, 1)

	o := offers[0]
	assert.Equal(t, "FCO", o.ToAirport)
	assert.Equal(t, "ECONOMY", o.Cabin)
	assert.Equal(t, "CDG~FCO~2024-09-01~1~0~LH1035+LH230@2024-09-01T08:00:00", o.TravelID)
	assert.True(t, o.Price.Equal(decimal.RequireFromString("210.40")))

	again, err := a.Offer(context.Background(), o.TravelID)
	require.NoError(t, err)
	assert.Equal(t, o.TravelID, again.TravelID)

	_, err = a.Offer(context.Background(), "CDG~FCO~2024-09-01~1~0~AF1366@2024-09-01T08:00:00")
	assert.True(t, errors.Is(err, ErrOfferGone))
}

func TestParseAmadeusTravelID_Malformed(t *testing.T) {
	_, err := parseAmadeusTravelID("CDG~FCO")
	assert.Error(t, err)
	_, err = parseAmadeusTravelID("CDG~FCO~bad~1~0~7")
	assert.Error(t, err)
}

func TestFromEnv_RegistersConfiguredProviders(t *testing.T) {
	env := intconfig.Env{TravelProviders: "sncf=http://sncf.local, airfrance=http://af.local", UpstreamTimeout: time.Second}
	reg := FromEnv(context.Background(), env)
	require.Equal(t, 2, reg.Len())

	p, ok := reg.Get("Sncf")
	require.True(t, ok)
	assert.Equal(t, "SNCF", p.Name())

	names := []string{}
	for _, p := range reg.All() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"AIRFRANCE", "SNCF"}, names)
}
