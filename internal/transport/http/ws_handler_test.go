package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
	"rhel-assessment-service/internal/domain"
	"rhel-assessment-service/internal/infra/memory"
)

func TestWebSocketAssessmentFlow(t *testing.T) {
	service, _ := newTestService(t)
	server := httptest.NewServer(NewRouter(service, zap.NewNop(), ""))
	defer server.Close()

	conn := dial(t, server.URL)
	defer conn.Close()

	payload := readUntil(t, conn, "state", statusIs(domain.StatusIdle))
	if payload["sessionId"] == "" {
		t.Fatalf("expected session id in first state")
	}

	send(t, conn, "start", nil)
	readUntil(t, conn, "state", statusIs(domain.StatusRegistering))

	send(t, conn, "register", map[string]any{"name": "Ada", "email": "ada@example.com"})
	readUntil(t, conn, "state", statusIs(domain.StatusActive))

	for i := 0; i < 2; i++ {
		send(t, conn, "answer", map[string]any{"index": 0})
		send(t, conn, "next", nil)
	}
	done := readUntil(t, conn, "state", statusIs(domain.StatusCompleted))
	report, ok := done["report"].(map[string]any)
	if !ok || report["percentage"] != float64(100) {
		t.Fatalf("expected 100%% report, got %v", done["report"])
	}

	send(t, conn, "notification", nil)
	note := readUntil(t, conn, "notification", nil)
	if note["subject"] != "[VEPSUN-RHEL10] Ada Performance Score: 100%" {
		t.Fatalf("unexpected subject %v", note["subject"])
	}

	send(t, conn, "restart", nil)
	readUntil(t, conn, "state", statusIs(domain.StatusIdle))
}

func TestWebSocketReportsErrors(t *testing.T) {
	service, _ := newTestService(t)
	server := httptest.NewServer(NewRouter(service, zap.NewNop(), ""))
	defer server.Close()

	conn := dial(t, server.URL)
	defer conn.Close()
	readUntil(t, conn, "state", statusIs(domain.StatusIdle))

	send(t, conn, "next", nil)
	errPayload := readUntil(t, conn, "error", nil)
	if errPayload["code"] != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %v", errPayload["code"])
	}

	send(t, conn, "start", nil)
	readUntil(t, conn, "state", statusIs(domain.StatusRegistering))
	send(t, conn, "register", map[string]any{"name": "  ", "email": "ada@example.com"})
	errPayload = readUntil(t, conn, "error", nil)
	if errPayload["code"] != "invalid_registration" {
		t.Fatalf("expected invalid_registration, got %v", errPayload["code"])
	}

	send(t, conn, "bogus", nil)
	errPayload = readUntil(t, conn, "error", nil)
	if errPayload["code"] != "bad_request" {
		t.Fatalf("expected bad_request, got %v", errPayload["code"])
	}
}

func TestWebSocketAdminViewListsResults(t *testing.T) {
	service, archive := newTestService(t)
	if err := archive.Append(context.Background(), domain.ResultRecord{ID: "r1", Name: "Linus", Score: 70, Date: time.Now()}); err != nil {
		t.Fatalf("seed archive: %v", err)
	}
	server := httptest.NewServer(NewRouter(service, zap.NewNop(), ""))
	defer server.Close()

	conn := dial(t, server.URL)
	defer conn.Close()
	readUntil(t, conn, "state", statusIs(domain.StatusIdle))

	send(t, conn, "admin", nil)
	var msg struct {
		Type    string                `json:"type"`
		Payload []domain.ResultRecord `json:"payload"`
	}
	for msg.Type != "results" {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
	}
	if len(msg.Payload) != 1 || msg.Payload[0].Name != "Linus" {
		t.Fatalf("unexpected results %+v", msg.Payload)
	}

	send(t, conn, "exit_admin", nil)
	readUntil(t, conn, "state", statusIs(domain.StatusIdle))
}

func newTestService(t *testing.T) (*app.AssessmentService, *app.SlotArchive) {
	t.Helper()
	archive := app.NewSlotArchive(memory.NewSlotStore(), app.DefaultArchiveSlot, nil)
	source := memory.NewBankSource(memory.NewStaticBank(sampleQuestions()), time.Minute)
	service := app.NewAssessmentService(memory.NewSessionStore(), source, archive, app.Options{QuestionCount: 2})
	return service, archive
}

func dial(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	u := "ws" + serverURL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func statusIs(status domain.Status) func(map[string]any) bool {
	return func(p map[string]any) bool { return p["status"] == string(status) }
}

// readUntil skips messages until one of type expect satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, expect string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 50; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", expect, err)
		}
		if msg.Type == expect && (match == nil || match(msg.Payload)) {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message arrived", expect)
	return nil
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:                "q1",
			Module:            domain.RHELModules[8],
			Topic:             "unit overrides",
			Scenario:          "A unit file must be tweaked without touching the vendor copy.",
			Prompt:            "Which command opens a drop-in override?",
			Options:           []string{"systemctl edit sshd", "vi /usr/lib/systemd/system/sshd.service", "systemctl mask sshd"},
			OptionSimulations: []string{"drop-in created", "vendor file modified", "unit masked"},
			CorrectAnswer:     0,
			Explanation:       "systemctl edit writes an override.conf drop-in.",
			Difficulty:        domain.DifficultyJunior,
		},
		{
			ID:                "q2",
			Module:            domain.RHELModules[6],
			Topic:             "file contexts",
			Scenario:          "httpd cannot read content moved from a home directory.",
			Prompt:            "What restores the expected label?",
			Options:           []string{"restorecon -Rv /var/www/html", "setenforce 0", "chmod 777 /var/www/html"},
			OptionSimulations: []string{"labels reset", "enforcement disabled", "permissions widened"},
			CorrectAnswer:     0,
			Explanation:       "restorecon applies the policy default context.",
			Difficulty:        domain.DifficultyIntermediate,
		},
	}
}
