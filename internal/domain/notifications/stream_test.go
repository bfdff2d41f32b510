package notifications

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/notify"
)

// readEvents consume el stream hasta juntar `want` notificaciones o vencer
// el deadline.
func readEvents(t *testing.T, body *bufio.Scanner, want int, deadline time.Duration) []Notification {
	t.Helper()

	done := time.After(deadline)
	var out []Notification
	ch := make(chan Notification)

	go func() {
		for body.Scan() {
			line := body.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var ev streamEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				continue
			}
			if ev.Type == "notification" && ev.Data != nil {
				ch <- *ev.Data
			}
		}
	}()

	for len(out) < want {
		select {
		case n := <-ch:
			out = append(out, n)
		case <-done:
			t.Fatalf("llegaron %d notificaciones de %d antes del deadline", len(out), want)
		}
	}
	return out
}

func TestStream_PushesOnlyAboveWatermark(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())

	for i := 0; i < 3; i++ {
		svc.Notify(context.Background(), "u1", notify.Message{Type: "welcome", Title: "vieja"})
	}

	h := StreamHandler(svc, 20*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = middleware.WithPrincipal(ctx, middleware.Principal{UserID: "u1", Role: "client"})

	// last_id=2: solo la fila 3 es nueva
	req := httptest.NewRequest("GET", "/api/notifications/stream?user_id=u1&last_id=2", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		h(rec, req)
		close(served)
	}()

	// y mientras el stream está abierto entra una fila más
	time.Sleep(30 * time.Millisecond)
	svc.Notify(context.Background(), "u1", notify.Message{Type: "order_status", Title: "nueva"})
	// ruido de otro usuario: no debe salir por este stream
	svc.Notify(context.Background(), "u2", notify.Message{Type: "welcome", Title: "ajena"})

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-served

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	sc := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	got := readEvents(t, sc, 2, time.Second)

	if got[0].ID != 3 || got[1].ID != 4 {
		t.Fatalf("ids = %d,%d; quería 3,4", got[0].ID, got[1].ID)
	}
	for _, n := range got {
		if n.UserID != "u1" {
			t.Fatalf("se filtró una fila de %s", n.UserID)
		}
	}
}

func TestStream_RequiresSessionAndOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeStaff{}, logger.Nop())
	svc.Notify(context.Background(), "u1", notify.Message{Type: "security_alert", Title: "privada"})

	h := StreamHandler(svc, 10*time.Millisecond, logger.Nop())

	// sin sesión: nada de stream, ni siquiera el evento de conexión
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/notifications/stream?user_id=u1", nil))
	if rec.Code != 401 {
		t.Fatalf("anónimo devolvió %d, quería 401", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "privada") {
		t.Fatal("un caller anónimo recibió notificaciones ajenas")
	}

	// cliente pidiendo el feed de otro usuario
	ctx := middleware.WithPrincipal(context.Background(), middleware.Principal{UserID: "u2", Role: "client"})
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/notifications/stream?user_id=u1", nil).WithContext(ctx))
	if rec.Code != 403 {
		t.Fatalf("feed ajeno devolvió %d, quería 403", rec.Code)
	}

	// staff sí puede mirar el feed de cualquier usuario
	sctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	sctx = middleware.WithPrincipal(sctx, middleware.Principal{UserID: "admin", Role: "staff"})
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/notifications/stream?user_id=u1", nil).WithContext(sctx))
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("staff no obtuvo stream: content-type = %q, code = %d", ct, rec.Code)
	}
}

func TestStream_RequiresUserID(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeStaff{}, logger.Nop())
	h := StreamHandler(svc, 10*time.Millisecond, logger.Nop())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/notifications/stream", nil))

	if rec.Code != 400 {
		t.Fatalf("sin user_id devolvió %d, quería 400", rec.Code)
	}
}
