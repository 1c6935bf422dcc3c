package messenger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReply(t *testing.T) {
	var captured struct {
		ReplyToken string            `json:"replyToken"`
		Messages   []json.RawMessage `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/reply" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer channel-token" {
			t.Errorf("Authorization = %q, want bearer channel token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "channel-token", 5*time.Second)

	err := client.Reply(context.Background(), "reply-token-1", NewText("こんにちは"))
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}

	if captured.ReplyToken != "reply-token-1" {
		t.Errorf("ReplyToken = %q, want %q", captured.ReplyToken, "reply-token-1")
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(captured.Messages))
	}

	var msg TextMessage
	if err := json.Unmarshal(captured.Messages[0], &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.Type != "text" || msg.Text != "こんにちは" {
		t.Errorf("message = %+v, want text message", msg)
	}
}

func TestReply_PlatformError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "channel-token", 5*time.Second)

	if err := client.Reply(context.Background(), "used-token", NewText("x")); err == nil {
		t.Error("Reply() expected error for 400 response")
	}
}

func TestPush(t *testing.T) {
	var captured pushRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/push" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var raw struct {
			To       string            `json:"to"`
			Messages []json.RawMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		captured.To = raw.To
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "channel-token", 5*time.Second)

	if err := client.Push(context.Background(), "U999", NewText("announcement")); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if captured.To != "U999" {
		t.Errorf("To = %q, want %q", captured.To, "U999")
	}
}

func TestPush_TransportError(t *testing.T) {
	c := New("http://127.0.0.1:0", "channel-token", time.Second)
	if err := c.Push(context.Background(), "U1", NewText("x")); err == nil {
		t.Error("Push() expected error for unreachable host")
	}
}

func TestNewButtons(t *testing.T) {
	msg := NewButtons("menu", "操作を選んでください",
		NewPostbackAction("出勤", "action=checkin"),
		NewPostbackAction("退勤", "action=checkout"),
	)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["type"] != "template" {
		t.Errorf("type = %v, want template", decoded["type"])
	}
	tmpl := decoded["template"].(map[string]interface{})
	if tmpl["type"] != "buttons" {
		t.Errorf("template.type = %v, want buttons", tmpl["type"])
	}
	actions := tmpl["actions"].([]interface{})
	if len(actions) != 2 {
		t.Errorf("got %d actions, want 2", len(actions))
	}
}
