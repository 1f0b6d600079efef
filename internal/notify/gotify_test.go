package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGotifyNotify(t *testing.T) {
	var got gotifyMessage
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/message" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotToken = r.URL.Query().Get("token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewGotify(srv.URL, "app-token")
	err := g.Notify(context.Background(), "Deep work", "Deep work starts now", 5)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotToken != "app-token" {
		t.Fatalf("token = %q", gotToken)
	}
	if got.Title != "Deep work" || got.Priority != 5 {
		t.Fatalf("message = %+v", got)
	}
}

func TestGotifyNotifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGotify(srv.URL, "wrong")
	if err := g.Notify(context.Background(), "t", "m", 1); err == nil {
		t.Fatal("expected error on 401")
	}
}
