package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

var (
	ErrOracleUnavailable = errors.New("grading oracle unavailable")
	ErrOracleBadResponse = errors.New("grading oracle returned malformed response")
)

// HTTPOracle обращается к внешнему сервису оценки по HTTP.
// Формат намеренно узкий: POST {question, answer} → {"score": x}.
// Никакой сборки промптов здесь нет, это забота самого сервиса.
type HTTPOracle struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPOracle(url, apiKey string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPOracle{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type oracleRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type oracleResponse struct {
	Score float64 `json:"score"`
}

func (o *HTTPOracle) Score(ctx context.Context, question, answer string) (float64, error) {
	body, err := json.Marshal(oracleRequest{Question: question, Answer: answer})
	if err != nil {
		return 0, fmt.Errorf("failed to encode oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var out oracleResponse
	dec := json.NewDecoder(resp.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOracleBadResponse, err)
	}

	if math.IsNaN(out.Score) || math.IsInf(out.Score, 0) || out.Score < 0 || out.Score > 1 {
		return 0, fmt.Errorf("%w: score %v out of [0,1]", ErrOracleBadResponse, out.Score)
	}
	return out.Score, nil
}
