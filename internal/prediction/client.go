// Package prediction wraps the external growth-prediction service. One
// POST per metric; any transport error, timeout or malformed payload is
// surfaced as ErrUnavailable so callers degrade that metric instead of
// failing the whole goal computation.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
)

var ErrUnavailable = errors.New("prediction service unavailable")

// Input carries the group aggregates the model is scored on.
type Input struct {
	MemberCount         int
	AvgAge              float64
	AvgBMI              float64
	GroupMean3w         float64
	GroupStdDev3w       float64
	GroupDurationMean3w float64
	MemberStdDev        float64
}

// predictRequest is the wire payload. The existing service expects the
// group std-dev under the literal key "var"; keep the quirk on the wire
// and the honest name in Go.
type predictRequest struct {
	Metric              string  `json:"metric"`
	MemberCount         int     `json:"member_count"`
	AvgAge              float64 `json:"avg_age"`
	AvgBmi              float64 `json:"avg_bmi"`
	GroupMean3w         float64 `json:"group_mean_3w"`
	GroupStdDev3w       float64 `json:"var"`
	GroupDurationMean3w float64 `json:"group_duration_mean_3w"`
	MemberStdDev        float64 `json:"member_std"`
}

type predictResponse struct {
	PredictedGrowthRate *float64 `json:"predicted_growth_rate"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Predict returns the model's predicted growth rate for one metric.
func (c *Client) Predict(ctx context.Context, metric models.MetricType, in Input) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Metric:              string(metric),
		MemberCount:         in.MemberCount,
		AvgAge:              in.AvgAge,
		AvgBmi:              in.AvgBMI,
		GroupMean3w:         in.GroupMean3w,
		GroupStdDev3w:       in.GroupStdDev3w,
		GroupDurationMean3w: in.GroupDurationMean3w,
		MemberStdDev:        in.MemberStdDev,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict %s: %w", metric, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("predict %s: status %d: %w", metric, resp.StatusCode, ErrUnavailable)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.PredictedGrowthRate == nil {
		return 0, fmt.Errorf("predict %s: malformed response: %w", metric, ErrUnavailable)
	}

	return *out.PredictedGrowthRate, nil
}
