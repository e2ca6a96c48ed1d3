package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	intconfig "voyage/internal/config"
	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

// StepVerifier asks the service owning a step's record whether it still holds.
type StepVerifier interface {
	VerifyStep(ctx context.Context, step models.Step, token string) (models.StepStatus, error)
}

// HTTPStepVerifier calls the verify endpoints of the catalog services:
//
//	GET {base}/api/{kind}/verify/{ref}    sleep, eat, drink, enjoy
//	PUT {base}/api/verify/{ref}           travel, with the caller's token
type HTTPStepVerifier struct {
	BaseURLs map[models.StepKind]string
	Client   *http.Client
}

func NewHTTPStepVerifier(env intconfig.Env) HTTPStepVerifier {
	timeout := env.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return HTTPStepVerifier{
		BaseURLs: map[models.StepKind]string{
			models.StepTravel: env.ServiceURL(intconfig.ServiceTravel),
			models.StepSleep:  env.ServiceURL(intconfig.ServiceSleep),
			models.StepEat:    env.ServiceURL(intconfig.ServiceEat),
			models.StepDrink:  env.ServiceURL(intconfig.ServiceDrink),
			models.StepEnjoy:  env.ServiceURL(intconfig.ServiceEnjoy),
		},
		Client: &http.Client{Timeout: timeout},
	}
}

func (v HTTPStepVerifier) VerifyStep(ctx context.Context, step models.Step, token string) (models.StepStatus, error) {
	base := strings.TrimRight(v.BaseURLs[step.Kind], "/")
	if base == "" {
		return "", domain.UpstreamError{Service: string(step.Kind), Err: fmt.Errorf("no url configured")}
	}

	method := http.MethodGet
	url := fmt.Sprintf("%s/api/%s/verify/%d", base, step.Kind, step.RefID)
	if step.Kind == models.StepTravel {
		method = http.MethodPut
		url = fmt.Sprintf("%s/api/verify/%d", base, step.RefID)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", domain.UpstreamError{Service: string(step.Kind), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return models.StepOK, nil
	case http.StatusCreated:
		return models.StepModified, nil
	case http.StatusNotFound:
		return models.StepMissing, nil
	}
	return "", domain.UpstreamError{Service: string(step.Kind), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
}
