package privacy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrivateAIScrubber_ScrubText(t *testing.T) {
	var gotKey string
	var gotReq privateAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode([]privateAIResult{
			{ProcessedText: "my name is [NAME_1]"},
		})
	}))
	defer srv.Close()

	s, err := NewPrivateAIScrubber(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("NewPrivateAIScrubber: %v", err)
	}
	out, err := s.ScrubText(context.Background(), "my name is John Smith")
	if err != nil {
		t.Fatalf("ScrubText: %v", err)
	}
	if out != "my name is [NAME_1]" {
		t.Errorf("scrubbed = %q", out)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-KEY = %q, want test-key", gotKey)
	}
	if gotReq.Text != "my name is John Smith" {
		t.Errorf("request text = %q", gotReq.Text)
	}
	if gotReq.ProcessedText.Type != "MARKER" {
		t.Errorf("processed_text type = %q, want MARKER", gotReq.ProcessedText.Type)
	}
	if gotReq.EntityDetection.Accuracy != "high" {
		t.Errorf("accuracy = %q, want high", gotReq.EntityDetection.Accuracy)
	}
}

func TestPrivateAIScrubber_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid api key"})
	}))
	defer srv.Close()

	s, err := NewPrivateAIScrubber(srv.URL, "bad-key")
	if err != nil {
		t.Fatalf("NewPrivateAIScrubber: %v", err)
	}
	if _, err := s.ScrubText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for API failure response")
	}
}

func TestPrivateAIScrubber_EmptyText(t *testing.T) {
	s, err := NewPrivateAIScrubber("http://unused.invalid", "key")
	if err != nil {
		t.Fatalf("NewPrivateAIScrubber: %v", err)
	}
	out, err := s.ScrubText(context.Background(), "")
	if err != nil {
		t.Fatalf("ScrubText: %v", err)
	}
	if out != "" {
		t.Errorf("scrubbed = %q, want empty", out)
	}
}

func TestNewPrivateAIScrubber_RequiresKey(t *testing.T) {
	if _, err := NewPrivateAIScrubber("", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
