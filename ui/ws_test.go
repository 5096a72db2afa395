package ui

import (
	"encoding/binary"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialSession(t *testing.T, env *testEnv) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(env.server.Router())
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/session"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn, server
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env wsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("reading envelope: %v", err)
	}
	return env
}

func TestWebSocket_RejectsNonAuthFirstFrame(t *testing.T) {
	env := newTestEnv(t)
	conn, server := dialSession(t, env)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "something_else"}); err != nil {
		t.Fatal(err)
	}

	envelope := readEnvelope(t, conn)
	if envelope.Event != "error" {
		t.Errorf("expected error event, got %s", envelope.Event)
	}
}

func TestWebSocket_RejectsInvalidToken(t *testing.T) {
	env := newTestEnv(t)
	conn, server := dialSession(t, env)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": "forged"}); err != nil {
		t.Fatal(err)
	}

	envelope := readEnvelope(t, conn)
	if envelope.Event != "error" {
		t.Errorf("expected error event, got %s", envelope.Event)
	}
}

func TestWebSocket_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	conn, server := dialSession(t, env)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": token}); err != nil {
		t.Fatal(err)
	}

	connected := readEnvelope(t, conn)
	if connected.Event != "connected" {
		t.Fatalf("expected connected event, got %s", connected.Event)
	}
	payload, ok := connected.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected connected payload: %T", connected.Data)
	}
	sessionID, _ := payload["session_id"].(string)
	if sessionID == "" {
		t.Error("connected event missing session id")
	}

	// One half-second chunk of tone produces a metrics snapshot
	chunk := make([]byte, 16000)
	for i := 0; i < len(chunk)/2; i++ {
		v := 0.5 * math.Sin(2*math.Pi*300*float64(i)/16000)
		binary.LittleEndian.PutUint16(chunk[2*i:], uint16(int16(v*32767)))
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		t.Fatal(err)
	}

	metrics := readEnvelope(t, conn)
	if metrics.Event != "live_metrics" {
		t.Fatalf("expected live_metrics event, got %s", metrics.Event)
	}

	// Feedback can be requested at any point
	if err := conn.WriteJSON(map[string]string{"type": "request_investor_response"}); err != nil {
		t.Fatal(err)
	}
	investor := readEnvelope(t, conn)
	if investor.Event != "investor_response" {
		t.Fatalf("expected investor_response event, got %s", investor.Event)
	}

	if err := conn.WriteJSON(map[string]string{"type": "end_session"}); err != nil {
		t.Fatal(err)
	}
	ended := readEnvelope(t, conn)
	if ended.Event != "session_ended" {
		t.Errorf("expected session_ended event, got %s", ended.Event)
	}
}

func TestWebSocket_UnknownControlType(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	conn, server := dialSession(t, env)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": token}); err != nil {
		t.Fatal(err)
	}
	if envelope := readEnvelope(t, conn); envelope.Event != "connected" {
		t.Fatalf("expected connected, got %s", envelope.Event)
	}

	if err := conn.WriteJSON(map[string]string{"type": "rewind_time"}); err != nil {
		t.Fatal(err)
	}
	envelope := readEnvelope(t, conn)
	if envelope.Event != "error" {
		t.Errorf("unknown control should produce an error event, got %s", envelope.Event)
	}
}
