package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adminguide/adminguide-go/internal/client"
	"github.com/adminguide/adminguide-go/internal/model"
	"github.com/adminguide/adminguide-go/internal/service"
	"github.com/adminguide/adminguide-go/internal/tools"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUpstream 模拟 OpenAI 接口
type fakeUpstream struct {
	t     *testing.T
	calls atomic.Int32

	mu       sync.Mutex
	lastReq  client.ChatRequest
	lastAuth string

	chat   http.HandlerFunc
	models http.HandlerFunc
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastAuth = r.Header.Get("Authorization")
	f.mu.Unlock()

	switch r.URL.Path {
	case "/chat/completions":
		var req client.ChatRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		f.mu.Lock()
		f.lastReq = req
		f.mu.Unlock()
		if f.chat == nil {
			http.Error(w, "no chat handler", http.StatusInternalServerError)
			return
		}
		f.chat(w, r)
	case "/models":
		if f.models == nil {
			fmt.Fprint(w, `{"data":[]}`)
			return
		}
		f.models(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeUpstream) request() (client.ChatRequest, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq, f.lastAuth
}

type nopUsage struct{}

func (nopUsage) Record(service.UsageRecord) {}

type testEnv struct {
	router   *gin.Engine
	upstream *fakeUpstream
}

func newTestEnv(t *testing.T, streaming bool, apiKey string) *testEnv {
	t.Helper()

	up := &fakeUpstream{t: t}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	llm := client.NewOpenAIClient(srv.URL, "gpt-4o-mini", 2*time.Second, logger)
	chat := service.NewChatService(llm, client.Parameters{Temperature: 0.7, MaxTokens: 1500}, 5*time.Second, nopUsage{}, logger)

	registry := tools.NewRegistry(logger)
	if err := tools.RegisterGuideTools(registry); err != nil {
		t.Fatalf("RegisterGuideTools failed: %v", err)
	}
	sessions := service.NewSessionService(logger)

	opts := RouterOptions{
		Chat:         NewChatHandler(chat, apiKey, logger),
		API:          NewAPIHandler("test-service", llm.Model(), llm, registry, sessions, logger),
		Classifier:   NewClassifierHandler(logger),
		Streaming:    streaming,
		AllowOrigins: []string{"*"},
		Logger:       logger,
	}
	if streaming {
		opts.WebSocket = NewWebSocketHandler(sessions, chat, []string{"*"}, logger)
	}
	return &testEnv{router: NewRouter(opts), upstream: up}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected JSON error body, got %q", w.Body.String())
	}
	return resp.Error
}

func chatJSON(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"model":   "gpt-4o-mini",
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": text}, "finish_reason": "stop"}},
			"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}
}

func sseFragments(frags ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frags {
			data, _ := json.Marshal(map[string]any{"choices": []any{map[string]any{"delta": map[string]string{"content": f}}}})
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func statusOnly(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":{"message":"upstream says no"}}`)
	}
}

func jsonBody(v any) string {
	data, _ := json.Marshal(v)
	return string(bytes.TrimSpace(data))
}
