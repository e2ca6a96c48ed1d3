package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"voyage/internal/domain/models"
)

const (
	AmadeusName       = "AMADEUS"
	amadeusTimeLayout = "2006-01-02T15:04:05"
	amadeusMaxResults = 20
)

// Amadeus queries the flight-offers search API. It has no lookup by offer
// id, and offer ids only number the results of one response, so travel ids
// carry the search that produced them plus the flights booked, and Offer
// re-runs the search looking for the same flights.
type Amadeus struct {
	baseURL string
	client  *http.Client
}

func NewAmadeus(ctx context.Context, baseURL, key, secret string, timeout time.Duration) *Amadeus {
	base := strings.TrimRight(baseURL, "/")
	cfg := clientcredentials.Config{
		ClientID:     key,
		ClientSecret: secret,
		TokenURL:     base + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	client := cfg.Client(ctx)
	client.Timeout = timeout
	return &Amadeus{baseURL: base, client: client}
}

func (a *Amadeus) Name() string { return AmadeusName }

type amadeusResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Itineraries []struct {
			Segments []struct {
				Departure   amadeusPoint `json:"departure"`
				Arrival     amadeusPoint `json:"arrival"`
				CarrierCode string       `json:"carrierCode"`
				Number      string       `json:"number"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Currency   string `json:"currency"`
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
		TravelerPricings []struct {
			FareDetailsBySegment []struct {
				Cabin string `json:"cabin"`
			} `json:"fareDetailsBySegment"`
		} `json:"travelerPricings"`
	} `json:"data"`
}

type amadeusPoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

// amadeusQuery is the part of a search an offer needs to be found again.
// Flights is the offer's flight numbers and first departure, e.g.
// "AF1234+LH330@2024-09-01T08:00:00".
type amadeusQuery struct {
	From, To string
	Date     time.Time
	Adults   int
	Children int
	Flights  string
}

func (q amadeusQuery) travelID() string {
	return strings.Join([]string{q.From, q.To, q.Date.Format("2006-01-02"), strconv.Itoa(q.Adults), strconv.Itoa(q.Children), q.Flights}, "~")
}

func parseAmadeusTravelID(id string) (amadeusQuery, error) {
	parts := strings.Split(id, "~")
	if len(parts) != 6 {
		return amadeusQuery{}, fmt.Errorf("malformed amadeus travel id %q", id)
	}
	date, err := time.Parse("2006-01-02", parts[2])
	if err != nil {
		return amadeusQuery{}, fmt.Errorf("malformed amadeus travel id %q: %w", id, err)
	}
	adults, err1 := strconv.Atoi(parts[3])
	children, err2 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil {
		return amadeusQuery{}, fmt.Errorf("malformed amadeus travel id %q", id)
	}
	return amadeusQuery{From: parts[0], To: parts[1], Date: date, Adults: adults, Children: children, Flights: parts[5]}, nil
}

func (a *Amadeus) Search(ctx context.Context, q models.TravelSearch) ([]models.TravelOffer, error) {
	return a.search(ctx, amadeusQuery{
		From:     strings.ToUpper(strings.TrimSpace(q.FromCity)),
		To:       strings.ToUpper(strings.TrimSpace(q.ToCity)),
		Date:     q.Departure.UTC(),
		Adults:   q.NbAdults,
		Children: q.NbChildren,
	})
}

func (a *Amadeus) Offer(ctx context.Context, travelID string) (models.TravelOffer, error) {
	q, err := parseAmadeusTravelID(travelID)
	if err != nil {
		return models.TravelOffer{}, err
	}
	offers, err := a.search(ctx, q)
	if err != nil {
		return models.TravelOffer{}, err
	}
	for _, o := range offers {
		if o.TravelID == travelID {
			return o, nil
		}
	}
	return models.TravelOffer{}, ErrOfferGone
}

func (a *Amadeus) search(ctx context.Context, q amadeusQuery) ([]models.TravelOffer, error) {
	v := url.Values{}
	v.Set("originLocationCode", q.From)
	v.Set("destinationLocationCode", q.To)
	v.Set("departureDate", q.Date.Format("2006-01-02"))
	v.Set("adults", strconv.Itoa(q.Adults))
	if q.Children > 0 {
		v.Set("children", strconv.Itoa(q.Children))
	}
	v.Set("currencyCode", "EUR")
	v.Set("max", strconv.Itoa(amadeusMaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/shopping/flight-offers?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("amadeus search: unexpected status %d", resp.StatusCode)
	}

	var body amadeusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("amadeus: decode: %w", err)
	}

	out := make([]models.TravelOffer, 0, len(body.Data))
	for _, d := range body.Data {
		if len(d.Itineraries) == 0 || len(d.Itineraries[0].Segments) == 0 {
			continue
		}
		segs := d.Itineraries[0].Segments
		first, last := segs[0], segs[len(segs)-1]
		dep, err := time.Parse(amadeusTimeLayout, first.Departure.At)
		if err != nil {
			continue
		}
		arr, err := time.Parse(amadeusTimeLayout, last.Arrival.At)
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(d.Price.GrandTotal)
		if err != nil {
			continue
		}
		cabin := ""
		if len(d.TravelerPricings) > 0 && len(d.TravelerPricings[0].FareDetailsBySegment) > 0 {
			cabin = d.TravelerPricings[0].FareDetailsBySegment[0].Cabin
		}
		numbers := make([]string, 0, len(segs))
		for _, sg := range segs {
			numbers = append(numbers, sg.CarrierCode+sg.Number)
		}
		id := q
		id.Flights = strings.Join(numbers, "+") + "@" + first.Departure.At
		out = append(out, models.TravelOffer{
			FromCity:    q.From,
			FromAirport: first.Departure.IATACode,
			ToCity:      q.To,
			ToAirport:   last.Arrival.IATACode,
			Departure:   dep.UTC(),
			Arrival:     arr.UTC(),
			Price:       price,
			NbAdults:    q.Adults,
			NbChildren:  q.Children,
			Cabin:       cabin,
			TravelID:    id.travelID(),
			Service:     AmadeusName,
		})
	}
	return out, nil
}
