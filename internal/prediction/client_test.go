package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sean-323/LinkCare-sub001/internal/models"
)

func TestPredictSuccess(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]float64{"predicted_growth_rate": 0.12})
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	rate, err := client.Predict(context.Background(), models.MetricSteps, Input{
		MemberCount:         5,
		AvgAge:              31.5,
		AvgBMI:              23.1,
		GroupMean3w:         7800,
		GroupStdDev3w:       950,
		GroupDurationMean3w: 42,
		MemberStdDev:        1200,
	})
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if rate != 0.12 {
		t.Errorf("rate = %v, want 0.12", rate)
	}

	// The existing service reads the group std-dev from the literal
	// field "var"; the payload must keep that name.
	if v, ok := got["var"]; !ok || v.(float64) != 950 {
		t.Errorf(`payload "var" = %v, want 950`, got["var"])
	}
	if got["metric"] != "STEPS" {
		t.Errorf("payload metric = %v, want STEPS", got["metric"])
	}
	if got["member_count"].(float64) != 5 {
		t.Errorf("payload member_count = %v, want 5", got["member_count"])
	}
}

func TestPredictServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.Predict(context.Background(), models.MetricKcal, Input{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestPredictMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing field", `{"something_else": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 2*time.Second)
			_, err := client.Predict(context.Background(), models.MetricDuration, Input{})
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestPredictTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient(server.URL, 50*time.Millisecond)
	_, err := client.Predict(context.Background(), models.MetricDistance, Input{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
