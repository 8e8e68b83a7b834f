package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cyberquiz-service/internal/app"
	"cyberquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

func TestWebSocketCountdownStream(t *testing.T) {
	start := time.Now().Add(26*time.Hour + 3*time.Minute + 4*time.Second)
	end := start.Add(time.Hour)
	source := func(ctx context.Context) domain.Schedule {
		return domain.Schedule{IsEnabled: true, StartAt: &start, EndAt: &end, Title: "Тест"}
	}
	countdown := app.NewCountdownWithClock(source, time.Now, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go countdown.Run(ctx)

	wsHandler := NewWSHandler(countdown)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/availability", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/availability"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The subscription is primed, so the first tick arrives immediately.
	tick := readTick(conn, t)
	if tick.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", tick.Status)
	}
	if tick.Label != "До початку" {
		t.Fatalf("unexpected label %q", tick.Label)
	}
	if tick.Days != 1 || tick.Hours != 2 {
		t.Fatalf("unexpected countdown %dд %dг", tick.Days, tick.Hours)
	}
	if tick.Display == "" {
		t.Fatalf("expected display string")
	}

	// Subsequent ticks come from the broadcast loop.
	tick = readTick(conn, t)
	if tick.Status != domain.StatusPending {
		t.Fatalf("expected pending from broadcast, got %s", tick.Status)
	}
}

func TestWebSocketDisabledSchedule(t *testing.T) {
	source := func(ctx context.Context) domain.Schedule {
		return domain.DefaultSchedule()
	}
	countdown := app.NewCountdown(source)

	wsHandler := NewWSHandler(countdown)
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	tick := readTick(conn, t)
	if tick.Status != domain.StatusDisabled {
		t.Fatalf("expected disabled, got %s", tick.Status)
	}
	if tick.Label != "" || tick.Display != "" {
		t.Fatalf("disabled tick must carry no countdown: %+v", tick)
	}
}

func readTick(conn *websocket.Conn, t *testing.T) app.Tick {
	t.Helper()
	var tick app.Tick
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&tick); err != nil {
		t.Fatalf("read tick: %v", err)
	}
	return tick
}
