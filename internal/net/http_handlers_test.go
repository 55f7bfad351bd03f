package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	server "pipeworks/server"
)

func TestJoinReturnsSessionSnapshot(t *testing.T) {
	hub := server.NewHub(nil)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/join", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode join payload: %v", err)
	}

	if id, ok := payload["id"].(string); !ok || id != "player-1" {
		t.Fatalf("expected first session id player-1, got %v", payload["id"])
	}
	if ver, ok := payload["ver"].(float64); !ok || int(ver) != server.ProtocolVersion {
		t.Fatalf("expected protocol version %d, got %v", server.ProtocolVersion, payload["ver"])
	}
	if _, ok := payload["config"].(map[string]any); !ok {
		t.Fatalf("expected config object in join payload, got %T", payload["config"])
	}
	if _, ok := payload["tanks"].([]any); !ok {
		t.Fatalf("expected tanks array in join payload, got %T", payload["tanks"])
	}
}

func TestJoinRejectsWrongMethod(t *testing.T) {
	hub := server.NewHub(nil)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/join", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405 Method Not Allowed, got %d", resp.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	hub := server.NewHub(nil)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if resp.Body.String() != "ok" {
		t.Fatalf("expected body ok, got %q", resp.Body.String())
	}
}

func TestDiagnosticsIncludesTelemetryAndSessions(t *testing.T) {
	hub := server.NewHub(nil)
	join := hub.Join()
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics payload: %v", err)
	}

	players, ok := payload["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("expected one diagnostics player, got %v", payload["players"])
	}
	first, ok := players[0].(map[string]any)
	if !ok {
		t.Fatalf("expected player payload to decode as object, got %T", players[0])
	}
	if id, ok := first["id"].(string); !ok || id != join.ID {
		t.Fatalf("expected player id %q, got %v", join.ID, first["id"])
	}

	if _, ok := payload["telemetry"].(map[string]any); !ok {
		t.Fatalf("expected telemetry object in diagnostics payload, got %T", payload["telemetry"])
	}
	if tickRate, ok := payload["tickRate"].(float64); !ok || int(tickRate) != server.TickRate() {
		t.Fatalf("expected tickRate %d, got %v", server.TickRate(), payload["tickRate"])
	}
}

func TestWebSocketRequiresPlayerID(t *testing.T) {
	hub := server.NewHub(nil)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 Bad Request, got %d", resp.Code)
	}
}
