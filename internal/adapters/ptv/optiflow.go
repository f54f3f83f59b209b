package ptv

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const optimizationsPath = "/routeoptimization/optiflow/v1/optimizations"

// OptimizationService implements ports.OptimizationService against the
// PTV OptiFlow API.
type OptimizationService struct {
	client *Client
}

func NewOptimizationService(client *Client) *OptimizationService {
	return &OptimizationService{client: client}
}

type submitResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Submit posts the request once; a submission is not retried so a job is
// never started twice.
func (s *OptimizationService) Submit(
	ctx context.Context,
	req *domain.OptimizationRequest,
) (_ string, err error) {
	defer obs.Time(ctx, "optiflow.submit")(&err)

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode optimization request: %w", err)
	}

	httpReq, err := s.client.newRequest(ctx, http.MethodPost, optimizationsPath, body)
	if err != nil {
		return "", err
	}

	resp, err := s.client.do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}

	if decoded.ID == "" {
		if decoded.Description != "" {
			return "", &ServiceError{Code: resp.StatusCode, Description: decoded.Description}
		}
		return "", errors.New("no optimization id in response")
	}

	return decoded.ID, nil
}

func (s *OptimizationService) GetStatus(
	ctx context.Context,
	jobID string,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optiflow.get_status")(&err)

	var result domain.OptimizationResult
	if err := s.client.getJSON(ctx, optimizationsPath+"/"+url.PathEscape(jobID), &result); err != nil {
		return nil, fmt.Errorf("get optimization %s: %w", jobID, err)
	}
	if result.Status == "" && result.Description != "" {
		return nil, &ServiceError{Code: http.StatusOK, Description: result.Description}
	}

	return &result, nil
}

// Stop asks the service to end a job early. The response body is ignored.
func (s *OptimizationService) Stop(ctx context.Context, jobID string) (err error) {
	defer obs.Time(ctx, "optiflow.stop")(&err)

	resp, err := s.client.doWithRetry(ctx, func() (*http.Request, error) {
		return s.client.newRequest(ctx, http.MethodPost, optimizationsPath+"/"+url.PathEscape(jobID)+"/stop", nil)
	})
	if err != nil {
		return fmt.Errorf("stop optimization %s: %w", jobID, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return nil
}
