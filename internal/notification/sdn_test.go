package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"IntSentry/internal/config"
	"IntSentry/internal/model"
)

func testReport() *model.AttackReport {
	return &model.AttackReport{
		SrcMAC:     "02:00:00:00:aa:bb",
		SrcIP:      "10.0.0.1",
		DstIP:      "10.0.0.2",
		DstPort:    5000,
		PacketSize: 64,
		AttackType: model.AttackTypeUDPFlood,
	}
}

func TestPushAttackPostsReport(t *testing.T) {
	var got map[string]interface{}
	var path, method, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewSDNClient(config.SDNConfig{URL: server.URL, Timeout: "3s"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.PushAttack(testReport()); err != nil {
		t.Fatalf("PushAttack failed: %v", err)
	}

	if method != http.MethodPost || path != "/attack" {
		t.Errorf("Expected POST /attack, got %s %s", method, path)
	}
	if contentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", contentType)
	}

	want := map[string]interface{}{
		"src_mac":     "02:00:00:00:aa:bb",
		"src_ip":      "10.0.0.1",
		"dst_ip":      "10.0.0.2",
		"dst_port":    float64(5000),
		"packet_size": float64(64),
		"attack_type": "UDP Flood",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Field %s = %v, want %v", k, got[k], v)
		}
	}
}

func TestPushAttackRejectedByController(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad report", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewSDNClient(config.SDNConfig{URL: server.URL, Timeout: "3s"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.PushAttack(testReport()); err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
}

func TestPushAttackControllerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // port is now dead

	client, err := NewSDNClient(config.SDNConfig{URL: server.URL, Timeout: "1s"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.PushAttack(testReport()); err == nil {
		t.Fatal("Expected an error for an unreachable controller")
	}
}

func TestNewSDNClientRequiresURL(t *testing.T) {
	if _, err := NewSDNClient(config.SDNConfig{Timeout: "3s"}); err == nil {
		t.Fatal("Expected an error for a missing controller URL")
	}
}
