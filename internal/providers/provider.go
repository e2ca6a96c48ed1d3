// Package providers talks to the upstream transport offer sources consulted
// by the travel service.
package providers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	intconfig "voyage/internal/config"
	"voyage/internal/domain/models"
)

// ErrOfferGone means the provider no longer sells the offer.
var ErrOfferGone = errors.New("offer no longer available")

type Provider interface {
	Name() string
	Search(ctx context.Context, q models.TravelSearch) ([]models.TravelOffer, error)
	Offer(ctx context.Context, travelID string) (models.TravelOffer, error)
}

// Registry holds providers by upper-cased name.
type Registry struct {
	byName map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{byName: map[string]Provider{}}
	for _, p := range ps {
		r.Add(p)
	}
	return r
}

func (r *Registry) Add(p Provider) {
	r.byName[strings.ToUpper(p.Name())] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[strings.ToUpper(strings.TrimSpace(name))]
	return p, ok
}

// All returns the providers sorted by name.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) Len() int {
	return len(r.byName)
}

// FromEnv builds the registry from TRAVEL_PROVIDERS and the Amadeus credentials.
func FromEnv(ctx context.Context, env intconfig.Env) *Registry {
	timeout := env.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reg := NewRegistry()
	for name, base := range env.ProviderURLs() {
		reg.Add(NewHTTPProvider(name, base, &http.Client{Timeout: timeout}))
	}
	if env.AmadeusKey != "" && env.AmadeusSecret != "" {
		reg.Add(NewAmadeus(ctx, env.AmadeusURL, env.AmadeusKey, env.AmadeusSecret, timeout))
	}
	names := []string{}
	for _, p := range reg.All() {
		names = append(names, p.Name())
	}
	zap.L().Info("travel providers configured", zap.Strings("providers", names))
	return reg
}
