package generator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shouni/gemini-skill-kit/pkg/transport"
)

// --- Mocks ---

type postCall struct {
	model  string
	method transport.Method
	apiKey string
	body   any
}

// mockPoster は Poster のテスト用モックなのだ。呼び出し内容を記録するのだ。
type mockPoster struct {
	postFunc func(model string, method transport.Method, body any) ([]byte, error)
	calls    []postCall
}

func (m *mockPoster) Post(ctx context.Context, model string, method transport.Method, apiKey string, body any) ([]byte, error) {
	m.calls = append(m.calls, postCall{model: model, method: method, apiKey: apiKey, body: body})
	if m.postFunc != nil {
		return m.postFunc(model, method, body)
	}
	return []byte(`{}`), nil
}

// respondWith は固定の JSON を返す mockPoster を作るのだ。
func respondWith(raw string) *mockPoster {
	return &mockPoster{
		postFunc: func(string, transport.Method, any) ([]byte, error) {
			return []byte(raw), nil
		},
	}
}

// mustCandidates はテスト用の JSON を CandidatesResponse にするのだ。
func mustCandidates(t *testing.T, raw string) *CandidatesResponse {
	t.Helper()
	resp, err := DecodeCandidates([]byte(raw))
	if err != nil {
		t.Fatalf("failed to decode candidates: %v", err)
	}
	return resp
}

// mustPredictions はテスト用の JSON を PredictResponse にするのだ。
func mustPredictions(t *testing.T, raw string) *PredictResponse {
	t.Helper()
	resp, err := DecodePredictions([]byte(raw))
	if err != nil {
		t.Fatalf("failed to decode predictions: %v", err)
	}
	return resp
}

// toJSONMap はリクエストボディを JSON にしてから汎用マップに戻すのだ。
func toJSONMap(t *testing.T, body any) map[string]any {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	return m
}
