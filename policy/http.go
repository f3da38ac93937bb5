package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultScorerURL = "http://localhost:8100/ai-decide"

// HTTPEvaluator 把特征向量 POST 给外部打分服务
type HTTPEvaluator struct {
	URL    string
	Client *http.Client
	Log    *zap.Logger
}

func NewHTTPEvaluator(url string, timeout time.Duration, log *zap.Logger) *HTTPEvaluator {
	if url == "" {
		url = DefaultScorerURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPEvaluator{URL: url, Client: &http.Client{Timeout: timeout}, Log: log}
}

type scoreRequest struct {
	Action   string    `json:"action"`
	Features []float64 `json:"features"`
}

type scoreResponse struct {
	Result *float64 `json:"result"`
}

func (h *HTTPEvaluator) Score(ctx context.Context, features []float64) (float64, error) {
	body, err := json.Marshal(scoreRequest{Action: "score", Features: features})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		h.Log.Warn("❌ 调用打分服务失败", zap.String("url", h.URL), zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scorer returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	var out scoreResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		h.Log.Warn("❌ 打分服务返回数据解析失败", zap.Error(err))
		return 0, err
	}
	if out.Result == nil {
		return 0, fmt.Errorf("scorer response has no result field")
	}
	if *out.Result < 0 {
		return 0, fmt.Errorf("scorer returned negative score %v", *out.Result)
	}
	return *out.Result, nil
}
