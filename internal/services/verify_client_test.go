package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

type seenRequest struct {
	method, path, auth string
}

func verifyServer(t *testing.T, status int) (*httptest.Server, func() seenRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen seenRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = seenRequest{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() seenRequest {
		mu.Lock()
		defer mu.Unlock()
		return seen
	}
}

func TestHTTPStepVerifier_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   models.StepStatus
	}{
		{"ok", http.StatusOK, models.StepOK},
		{"modified", http.StatusCreated, models.StepModified},
		{"missing", http.StatusNotFound, models.StepMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, last := verifyServer(t, tc.status)
			v := HTTPStepVerifier{BaseURLs: map[models.StepKind]string{models.StepSleep: srv.URL + "/"}, Client: srv.Client()}

			got, err := v.VerifyStep(context.Background(), models.Step{Kind: models.StepSleep, RefID: 8}, "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			req := last()
			assert.Equal(t, http.MethodGet, req.method)
			assert.Equal(t, "/api/sleep/verify/8", req.path)
			assert.Empty(t, req.auth)
		})
	}
}

func TestHTTPStepVerifier_UnexpectedStatusIsUpstream(t *testing.T) {
	srv, _ := verifyServer(t, http.StatusBadGateway)
	v := HTTPStepVerifier{BaseURLs: map[models.StepKind]string{models.StepEat: srv.URL}, Client: srv.Client()}

	_, err := v.VerifyStep(context.Background(), models.Step{Kind: models.StepEat, RefID: 2}, "tok")
	assert.True(t, domain.IsUpstream(err))
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPStepVerifier_TravelUsesPutWithToken(t *testing.T) {
	srv, last := verifyServer(t, http.StatusCreated)
	v := HTTPStepVerifier{BaseURLs: map[models.StepKind]string{models.StepTravel: srv.URL}, Client: srv.Client()}

	got, err := v.VerifyStep(context.Background(), models.Step{Kind: models.StepTravel, RefID: 31}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepModified, got)

	req := last()
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/api/verify/31", req.path)
	assert.Equal(t, "Bearer tok-1", req.auth)
}

func TestHTTPStepVerifier_NoURLConfigured(t *testing.T) {
	_, err := HTTPStepVerifier{}.VerifyStep(context.Background(), models.Step{Kind: models.StepDrink, RefID: 1}, "")
	require.True(t, domain.IsUpstream(err))
	assert.Contains(t, err.Error(), "no url configured")
}

func TestHTTPStepVerifier_UnreachableIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	v := HTTPStepVerifier{BaseURLs: map[models.StepKind]string{models.StepEnjoy: url}}
	_, err := v.VerifyStep(context.Background(), models.Step{Kind: models.StepEnjoy, RefID: 4}, "")
	assert.True(t, domain.IsUpstream(err))
}
