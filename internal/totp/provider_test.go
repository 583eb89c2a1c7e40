package totp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "idcrenew/internal/errors"

	"github.com/pquerna/otp/totp"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func TestLocalProvider_Code(t *testing.T) {
	code, err := LocalProvider{}.Code(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if len(code) != 6 {
		t.Errorf("expected a 6-digit code but got %q", code)
	}

	// The derived code must validate against the same secret and window
	if !totp.Validate(code, testSecret) {
		t.Errorf("expected code %q to validate against the secret", code)
	}
}

func TestLocalProvider_BadSecret(t *testing.T) {
	_, err := LocalProvider{}.Code(context.Background(), "not base32 !!!")
	if err == nil {
		t.Fatal("expected error for a malformed secret")
	}
	if !apperrors.IsSecondFactorUnavailable(err) {
		t.Errorf("expected SecondFactorUnavailableError but got %T", err)
	}
}

func TestRemoteProvider_Code(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":"482913"}`))
	}))
	defer srv.Close()

	p := &RemoteProvider{BaseURL: srv.URL, Client: srv.Client()}

	code, err := p.Code(context.Background(), testSecret)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if code != "482913" {
		t.Errorf("expected code '482913' but got %q", code)
	}
	if gotPath != "/totp/"+testSecret {
		t.Errorf("expected path /totp/%s but got %q", testSecret, gotPath)
	}
}

func TestRemoteProvider_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := &RemoteProvider{BaseURL: srv.URL, Client: srv.Client()}

	_, err := p.Code(context.Background(), testSecret)
	if !apperrors.IsSecondFactorUnavailable(err) {
		t.Errorf("expected SecondFactorUnavailableError but got %v", err)
	}
}

func TestRemoteProvider_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	p := &RemoteProvider{BaseURL: srv.URL, Client: srv.Client()}

	_, err := p.Code(context.Background(), testSecret)
	if !apperrors.IsSecondFactorUnavailable(err) {
		t.Errorf("expected SecondFactorUnavailableError but got %v", err)
	}
}

func TestRemoteProvider_EmptyCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":""}`))
	}))
	defer srv.Close()

	p := &RemoteProvider{BaseURL: srv.URL, Client: srv.Client()}

	_, err := p.Code(context.Background(), testSecret)
	if !apperrors.IsSecondFactorUnavailable(err) {
		t.Errorf("expected SecondFactorUnavailableError but got %v", err)
	}
}

func TestRemoteProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing is listening any more

	p := &RemoteProvider{BaseURL: url, Client: &http.Client{Timeout: time.Second}}

	_, err := p.Code(context.Background(), testSecret)
	if !apperrors.IsSecondFactorUnavailable(err) {
		t.Errorf("expected SecondFactorUnavailableError but got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	if _, ok := NewProvider("", nil).(LocalProvider); !ok {
		t.Error("expected local provider when no endpoint is configured")
	}
	if _, ok := NewProvider("https://totp.example.com", http.DefaultClient).(*RemoteProvider); !ok {
		t.Error("expected remote provider when an endpoint is configured")
	}
}
