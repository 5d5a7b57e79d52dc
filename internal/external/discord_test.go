package external

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/albapepper/buzzwatch/internal/alerts"
)

func testBatch() []alerts.Condition {
	return []alerts.Condition{
		{Player: "Jane Doe", TeamPos: "KC - WR", Kind: alerts.KindAdd, Rate: 3.0, Delta: 30},
		{Player: "John Roe", Kind: alerts.KindDrop, Rate: 5.5, Delta: 44},
	}
}

func TestDiscordSenderPayload(t *testing.T) {
	var captured webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL, 5*time.Second)
	if err := s.Send(context.Background(), testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(captured.Embeds) != 2 {
		t.Fatalf("expected 2 embeds, got %d", len(captured.Embeds))
	}
	first := captured.Embeds[0]
	if first.Title != "Jane Doe (KC - WR)" {
		t.Errorf("title = %q", first.Title)
	}
	if !strings.Contains(first.Description, "Kind: add") {
		t.Errorf("description missing kind: %q", first.Description)
	}
	if first.Color != colorAdd {
		t.Errorf("add embed color = %#x", first.Color)
	}
	second := captured.Embeds[1]
	if second.Title != "John Roe" {
		t.Errorf("title without team_pos = %q", second.Title)
	}
	if second.Color != colorDrop {
		t.Errorf("drop embed color = %#x", second.Color)
	}
}

func TestDiscordSenderRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL, 5*time.Second)
	err := s.Send(context.Background(), testBatch())
	if !errors.Is(err, alerts.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestDiscordSenderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL, 5*time.Second)
	err := s.Send(context.Background(), testBatch())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, alerts.ErrRateLimited) {
		t.Fatalf("500 must not map to rate-limited: %v", err)
	}
}

func TestNewDiscordSenderEmptyURL(t *testing.T) {
	if s := NewDiscordSender("", time.Second); s != nil {
		t.Fatal("empty webhook URL should disable the sender")
	}
}
