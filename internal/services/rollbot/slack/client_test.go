package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientPostMessage(t *testing.T) {
	var (
		channel     string
		text        string
		broadcast   string
		attachments []Attachment
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if auth, token := r.Header.Get("Authorization"), r.PostForm.Get("token"); auth != "Bearer xoxb-test" && token != "xoxb-test" {
			t.Errorf("bot token not sent: authorization=%q token=%q", auth, token)
		}
		channel = r.PostForm.Get("channel")
		text = r.PostForm.Get("text")
		broadcast = r.PostForm.Get("reply_broadcast")
		if err := json.Unmarshal([]byte(r.PostForm.Get("attachments")), &attachments); err != nil {
			t.Errorf("decode attachments: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "xoxb-test", server.Client())
	err := client.PostMessage(context.Background(), Message{
		Channel:        "C1",
		Text:           "hello",
		Attachments:    []Attachment{MarkdownAttachment("#00CC00", "*2* Hits: 6 5")},
		ReplyBroadcast: true,
	})
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	if channel != "C1" || text != "hello" || broadcast != "true" {
		t.Fatalf("unexpected form channel=%q text=%q reply_broadcast=%q", channel, text, broadcast)
	}
	if len(attachments) != 1 || attachments[0].Color != "#00CC00" || len(attachments[0].MarkdownIn) != 1 || attachments[0].MarkdownIn[0] != "text" {
		t.Fatalf("unexpected attachments %+v", attachments)
	}
}

func TestClientPostMessageWithoutBroadcast(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-test", server.Client())
	if err := client.PostMessage(context.Background(), Message{Channel: "C1", Text: "hi"}); err != nil {
		t.Fatalf("post message: %v", err)
	}
	if _, ok := form["reply_broadcast"]; ok {
		t.Fatalf("reply_broadcast sent without ReplyBroadcast: %v", form)
	}
	if _, ok := form["attachments"]; ok {
		t.Fatalf("attachments sent without attachments: %v", form)
	}
}

func TestClientPostMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-test", server.Client())
	err := client.PostMessage(context.Background(), Message{Channel: "C404", Text: "hi"})
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "channel_not_found" || apiErr.Method != "chat.postMessage" {
		t.Fatalf("expected channel_not_found, got %v", err)
	}
}

func TestClientPostMessageHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-test", server.Client())
	err := client.PostMessage(context.Background(), Message{Channel: "C1", Text: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrAPI) {
		t.Fatalf("transport failures are not api errors: %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  ", want: DefaultAPIURL},
		{in: "https://slack.com/api", want: "https://slack.com/api/"},
		{in: "http://127.0.0.1:9000/api/", want: "http://127.0.0.1:9000/api/"},
	}
	for _, tt := range tests {
		client := NewClient(tt.in, "token", nil)
		if client.apiURL != tt.want {
			t.Fatalf("api url for %q = %q, want %q", tt.in, client.apiURL, tt.want)
		}
		if client.api == nil {
			t.Fatal("expected slack api client")
		}
	}
}
