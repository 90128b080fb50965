package nlg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/omnichat/orchestrator/internal/domain"
)

func TestStubEchoesPrompt(t *testing.T) {
	s := NewStub()

	reply, err := s.Generate(context.Background(), "short prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply != "Mock response based on: short prompt" {
		t.Fatalf("unexpected reply %q", reply)
	}

	long := strings.Repeat("x", 500)
	reply, _ = s.Generate(context.Background(), long)
	if len(reply) > len("Mock response based on: ")+maxEchoLen+3 {
		t.Fatalf("long prompt not truncated: %d chars", len(reply))
	}
}

func TestBuildReplyPrompt(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "show me shirts"},
		{Role: domain.RoleAssistant, Content: "here are two"},
	}
	prompt := BuildReplyPrompt(domain.IntentPayment, "pay with upi", map[string]string{"status": "success"}, history)

	for _, want := range []string{
		"show me shirts",
		"Customer message: pay with upi",
		"Detected intent: payment",
		`"status":"success"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestHTTPGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}]}`))
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "key", "test-model", 5*time.Second)
	reply, err := g.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestHTTPGeneratorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "", "test-model", 5*time.Second)
	if _, err := g.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error from upstream failure")
	}
}

func TestNewGeneratorSelectsBackend(t *testing.T) {
	if _, ok := NewGenerator("", "", "", time.Second).(*Stub); !ok {
		t.Fatal("empty base URL must select the stub")
	}
	if _, ok := NewGenerator("http://localhost:9", "", "m", time.Second).(*HTTPGenerator); !ok {
		t.Fatal("base URL must select the HTTP backend")
	}
}
