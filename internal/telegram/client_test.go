package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_DisabledWithoutConfig(t *testing.T) {
	if c := New("", "123", nil); c.Enabled() {
		t.Error("expected disabled client without a bot token")
	}
	if c := New("token", "", nil); c.Enabled() {
		t.Error("expected disabled client without a chat ID")
	}

	// A nil client must be safe to use
	var c *Client
	if err := c.SendMessage("hello"); err != nil {
		t.Errorf("expected nil client SendMessage to be a no-op but got: %v", err)
	}
	if err := c.SendPhoto("caption", []byte("png")); err != nil {
		t.Errorf("expected nil client SendPhoto to be a no-op but got: %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("test-token", "42", srv.Client())
	c.BaseURL = srv.URL

	if err := c.SendMessage("<b>summary</b>"); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("expected Bot API path but got %q", gotPath)
	}
	if gotPayload["chat_id"] != "42" {
		t.Errorf("expected chat_id '42' but got %v", gotPayload["chat_id"])
	}
	if gotPayload["text"] != "<b>summary</b>" {
		t.Errorf("expected message text to pass through but got %v", gotPayload["text"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("expected HTML parse mode but got %v", gotPayload["parse_mode"])
	}
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	c := New("test-token", "42", srv.Client())
	c.BaseURL = srv.URL

	err := c.SendMessage("hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API error with description but got: %v", err)
	}
}

func TestSendPhoto(t *testing.T) {
	var gotContentType string
	var gotChatID string
	var gotPhoto []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotChatID = r.FormValue("chat_id")
		file, _, err := r.FormFile("photo")
		if err == nil {
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			gotPhoto = buf[:n]
			file.Close()
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("test-token", "42", srv.Client())
	c.BaseURL = srv.URL

	if err := c.SendPhoto("run summary", []byte("fake-png-bytes")); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("expected multipart upload but got content type %q", gotContentType)
	}
	if gotChatID != "42" {
		t.Errorf("expected chat_id '42' but got %q", gotChatID)
	}
	if string(gotPhoto) != "fake-png-bytes" {
		t.Errorf("expected photo bytes to pass through but got %q", gotPhoto)
	}
}
