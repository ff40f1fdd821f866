package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocket_ConnectAndBroadcast(t *testing.T) {
	mux := http.NewServeMux()
	RegisterWebSocketRoute(mux)

	server := httptest.NewServer(mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?clientId=test-client"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// 起動前にキューされた他イベントが混ざることがあるので型で待つ
	connected := readMessageOfType(t, conn, "connected")

	var handshake struct {
		ClientID string `json:"clientId"`
	}
	if err := json.Unmarshal(connected.Data, &handshake); err != nil {
		t.Fatalf("decode handshake failed: %v", err)
	}
	if handshake.ClientID != "test-client" {
		t.Fatalf("unexpected client id: got=%q want=%q", handshake.ClientID, "test-client")
	}

	// 登録済みクライアントにブロードキャストが届く
	BroadcastWSMessage("coin_flipped", map[string]interface{}{"side": "heads"})
	readMessageOfType(t, conn, "coin_flipped")
}

func readMessageOfType(t *testing.T, conn *websocket.Conn, wantType string) WSMessage {
	t.Helper()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for %q failed: %v", wantType, err)
		}
		if msg.Type == wantType {
			return msg
		}
	}
}
