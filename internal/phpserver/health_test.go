package phpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)


func TestHealthClientCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Powered-By", "PHP/8.2.0")
		http.Redirect(w, r, "/login", http.StatusFound)
	}))
	defer srv.Close()

	h, err := HealthClient{Timeout: time.Second}.Check(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if h.Status != http.StatusFound || h.PoweredBy != "PHP/8.2.0" {
		t.Fatalf("unexpected health %#v", h)
	}
}

func TestHealthClientCheckErrors(t *testing.T) {
	t.Run("not php", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()
		if _, err := (HealthClient{}).Check(context.Background(), srv.URL); err == nil {
			t.Fatalf("expected error without X-Powered-By")
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Powered-By", "PHP/8.2.0")
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		if _, err := (HealthClient{}).Check(context.Background(), srv.URL); err == nil {
			t.Fatalf("expected error for 500")
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()
		if _, err := (HealthClient{Timeout: 200 * time.Millisecond}).Check(context.Background(), url); err == nil {
			t.Fatalf("expected dial error")
		}
	})
}
