package oracle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestWordPostsPayload(t *testing.T) {
	var got wordRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if err := client.RequestWord(7, 19_676); err != nil {
		t.Fatalf("request word: %v", err)
	}
	if got.RequestID != 7 || got.DayIndex != 19_676 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestRequestWordPropagatesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if err := client.RequestWord(1, 1); err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestRequestWordWithoutEndpointIsLogOnly(t *testing.T) {
	client := New("  ", nil)
	if err := client.RequestWord(1, 1); err != nil {
		t.Fatalf("log-only request word: %v", err)
	}
}
