package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"weekly-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
)

func TestWebSocketLeaderboardStream(t *testing.T) {
	server, service := newTestServer(t, nil)

	_, created := doJSON(t, http.MethodPost, server.URL+"/api/v1/quizzes", capitalsDraft())
	quizID := created.QuizID

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard?quizId=" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The current (empty) snapshot arrives first.
	typ, payload := readNext(t, conn)
	if typ != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", typ)
	}
	var lb domain.Leaderboard
	_ = json.Unmarshal(payload, &lb)
	if lb.QuizID != quizID || lb.TotalParticipants != 0 {
		t.Fatalf("unexpected initial snapshot %+v", lb)
	}

	_, err = service.SubmitQuizAttempt(context.Background(), domain.AttemptSubmission{
		UserID:                "u1",
		DisplayName:           "Alice",
		QuizID:                quizID,
		Answers:               []string{"Paris", "4"},
		CompletionTimeSeconds: 30,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	typ, payload = readNext(t, conn)
	if typ != "leaderboard" {
		t.Fatalf("expected leaderboard update, got %s", typ)
	}
	_ = json.Unmarshal(payload, &lb)
	if lb.TotalParticipants != 1 || lb.TopTen[0].UserID != "u1" || lb.TopTen[0].PercentageScore != 100 {
		t.Fatalf("unexpected update %+v", lb)
	}

	if err := conn.WriteJSON(map[string]any{"type": "rank", "payload": map[string]any{"userId": "u1"}}); err != nil {
		t.Fatalf("write rank request: %v", err)
	}
	typ, payload = readNext(t, conn)
	if typ != "rank" {
		t.Fatalf("expected rank, got %s", typ)
	}
	var rank domain.UserRank
	_ = json.Unmarshal(payload, &rank)
	if rank.Rank != 1 || rank.TotalParticipants != 1 {
		t.Fatalf("unexpected rank %+v", rank)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, _ := readNext(t, conn); typ != "error" {
		t.Fatalf("expected error for unsupported type, got %s", typ)
	}
}

func TestWebSocketRejectsUnknownQuiz(t *testing.T) {
	server, _ := newTestServer(t, nil)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard?quizId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}
