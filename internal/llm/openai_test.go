package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Check-in is at 3 PM."}}]}`)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIURL: srv.URL, APIKey: "sk-test", Model: "test-model"})
	got, err := o.Generate(context.Background(), "be helpful", "when is check-in", 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Check-in is at 3 PM." {
		t.Errorf("got %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" || gotBody["stream"] != false {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestOpenAIGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIURL: srv.URL})
	_, err := o.Generate(context.Background(), "s", "u", 0)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("got %v", err)
	}
}

func TestOpenAIGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIURL: srv.URL})
	if _, err := o.Generate(context.Background(), "s", "u", 0); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Check-in \"}}]}\n\n")
		fmt.Fprint(w, ": keepalive comment\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"is at 3 PM.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIURL: srv.URL})
	chunks, err := o.GenerateStream(context.Background(), "s", "u", 0)
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatal(chunk.Err)
		}
		b.WriteString(chunk.Text)
	}
	if got := b.String(); got != "Check-in is at 3 PM." {
		t.Errorf("reassembled stream = %q", got)
	}
}

func TestOpenAIGenerateStreamCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	o := NewOpenAI(OpenAIConfig{APIURL: srv.URL})
	chunks, err := o.GenerateStream(ctx, "s", "u", 0)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	// The channel must close rather than hang.
	for range chunks {
	}
}
