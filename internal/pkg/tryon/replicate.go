package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/env"
)

const (
	defaultReplicateBaseURL = "https://api.replicate.com"
	defaultPollInterval     = 2 * time.Second
)

// ReplicateGateway runs try-on generations against the Replicate predictions
// API: create a prediction, then poll it until it reaches a terminal status
// or the call context expires.
type ReplicateGateway struct {
	httpClient   *http.Client
	apiToken     string
	modelVersion string
	baseURL      string
	pollInterval time.Duration
}

// NewReplicateGateway creates a gateway configured from the environment.
func NewReplicateGateway() *ReplicateGateway {
	return &ReplicateGateway{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiToken:     env.GetEnv("REPLICATE_API_TOKEN", ""),
		modelVersion: env.GetEnv("REPLICATE_MODEL_VERSION", ""),
		baseURL:      env.GetEnv("REPLICATE_BASE_URL", defaultReplicateBaseURL),
		pollInterval: defaultPollInterval,
	}
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
}

// Generate implements the Gateway contract.
func (g *ReplicateGateway) Generate(ctx context.Context, humanImageURL, garmentImageURL string) (*GenerateResult, error) {
	if g.apiToken == "" {
		return nil, errors.New("REPLICATE_API_TOKEN is not set")
	}

	pred, raw, err := g.createPrediction(ctx, humanImageURL, garmentImageURL)
	if err != nil {
		return nil, err
	}

	for {
		switch pred.Status {
		case "succeeded":
			outputURL := firstOutputURL(pred.Output)
			if outputURL == "" {
				return &GenerateResult{Success: false, Metadata: raw}, nil
			}
			return &GenerateResult{Success: true, OutputURL: outputURL, Metadata: raw}, nil
		case "failed", "canceled":
			log.Warnf("[Replicate] prediction %s ended %s: %v", pred.ID, pred.Status, pred.Error)
			return &GenerateResult{Success: false, Metadata: raw}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.pollInterval):
		}

		pred, raw, err = g.getPrediction(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
	}
}

func (g *ReplicateGateway) createPrediction(ctx context.Context, humanImageURL, garmentImageURL string) (*predictionResponse, string, error) {
	payload := map[string]interface{}{
		"version": g.modelVersion,
		"input": map[string]interface{}{
			"human_img": humanImageURL,
			"garm_img":  garmentImageURL,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	return g.do(req)
}

func (g *ReplicateGateway) getPrediction(ctx context.Context, id string) (*predictionResponse, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/predictions/"+id, nil)
	if err != nil {
		return nil, "", err
	}
	return g.do(req)
}

func (g *ReplicateGateway) do(req *http.Request) (*predictionResponse, string, error) {
	req.Header.Set("Authorization", "Token "+g.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("replicate API returned %d: %s", resp.StatusCode, data)
	}

	var pred predictionResponse
	if err := json.Unmarshal(data, &pred); err != nil {
		return nil, "", fmt.Errorf("failed to decode replicate response: %w", err)
	}
	return &pred, string(data), nil
}

// firstOutputURL extracts the generated image URL. The predictions API
// returns either a single URL string or a list of them.
func firstOutputURL(output json.RawMessage) string {
	if len(output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(output, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(output, &many); err == nil && len(many) > 0 {
		return many[len(many)-1]
	}
	return ""
}
