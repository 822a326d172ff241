// Package ai is the outbound client for the accident analysis service.
// Results come back later through the internal callback endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// AnalysisClient asks the analysis service to process one video. The
// call only hands off work; it does not wait for a result.
type AnalysisClient interface {
	RequestAnalysis(ctx context.Context, mediaAssetID uuid.UUID, videoURL string) error
}

type analysisClient struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
}

type analysisRequest struct {
	VideoID  string `json:"videoId"`
	VideoURL string `json:"videoUrl"`
}

func NewAnalysisClient(log *logger.Logger) (AnalysisClient, error) {
	clientLog := log.With("client", "AnalysisClient")

	baseURL := strings.TrimSpace(os.Getenv("AI_SERVER_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing env var AI_SERVER_URL")
	}

	return &analysisClient{
		log:        clientLog,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (c *analysisClient) RequestAnalysis(ctx context.Context, mediaAssetID uuid.UUID, videoURL string) error {
	payload, err := json.Marshal(analysisRequest{
		VideoID:  mediaAssetID.String(),
		VideoURL: videoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(snippet))
	}

	c.log.Info("Requested analysis", "media_asset_id", mediaAssetID)
	return nil
}
