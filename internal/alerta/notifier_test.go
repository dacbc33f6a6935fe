package alerta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlackNotifierPostsMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(context.Background(), Mensagem{Titulo: "Demanda urgente", Texto: "Buraco na rua", Severidade: SeveridadeCritica})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got["text"], ":rotating_light: *Demanda urgente*") {
		t.Fatalf("unexpected text %q", got["text"])
	}
}

func TestSlackNotifierFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewSlackNotifier(srv.URL).Notify(context.Background(), Mensagem{Texto: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSlackNotifierDisabled(t *testing.T) {
	n := NewSlackNotifier("")
	if n != nil {
		t.Fatal("expected nil notifier without webhook")
	}
	if err := n.Notify(context.Background(), Mensagem{Texto: "x"}); err != nil {
		t.Fatalf("disabled notifier should be a no-op, got %v", err)
	}
}
