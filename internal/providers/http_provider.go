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

	"voyage/internal/domain/models"
)

// HTTPProvider speaks the plain JSON offer API:
//
//	GET {base}/offers?from_city=&to_city=&departure=&arrival=&nb_adults=&nb_children=
//	GET {base}/offers/{travel_id}
type HTTPProvider struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(name, baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{
		name:    strings.ToUpper(name),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Search(ctx context.Context, q models.TravelSearch) ([]models.TravelOffer, error) {
	v := url.Values{}
	v.Set("from_city", q.FromCity)
	v.Set("to_city", q.ToCity)
	if !q.Departure.IsZero() {
		v.Set("departure", q.Departure.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	if !q.Arrival.IsZero() {
		v.Set("arrival", q.Arrival.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	v.Set("nb_adults", strconv.Itoa(q.NbAdults))
	v.Set("nb_children", strconv.Itoa(q.NbChildren))

	var offers []models.TravelOffer
	status, err := p.getJSON(ctx, p.baseURL+"/offers?"+v.Encode(), &offers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s search: unexpected status %d", p.name, status)
	}
	for i := range offers {
		offers[i].Service = p.name
	}
	return offers, nil
}

func (p *HTTPProvider) Offer(ctx context.Context, travelID string) (models.TravelOffer, error) {
	var offer models.TravelOffer
	status, err := p.getJSON(ctx, p.baseURL+"/offers/"+url.PathEscape(travelID), &offer)
	if err != nil {
		return models.TravelOffer{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return models.TravelOffer{}, ErrOfferGone
	default:
		return models.TravelOffer{}, fmt.Errorf("%s offer %s: unexpected status %d", p.name, travelID, status)
	}
	offer.Service = p.name
	if offer.TravelID == "" {
		offer.TravelID = travelID
	}
	return offer, nil
}

// getJSON decodes the body into out only on 200.
func (p *HTTPProvider) getJSON(ctx context.Context, u string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s: decode: %w", p.name, err)
	}
	return resp.StatusCode, nil
}
