package notifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
)

// streamBatch limita cuántas filas se empujan por vuelta del loop.
const streamBatch = 50

type streamEvent struct {
	Type    string        `json:"type"` // connection | notification | error
	Message string        `json:"message,omitempty"`
	Data    *Notification `json:"data,omitempty"`
}

// StreamHandler es el canal de entrega: un response largo que sondea el
// store cada pollInterval y empuja filas con id > watermark como eventos
// SSE. El cliente manda user_id y last_id por query y persiste el último
// id recibido para reconectar sin duplicados.
func StreamHandler(svc *Service, pollInterval time.Duration, log logger.Logger) http.HandlerFunc {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		// el user_id de la query es el contrato del cliente, pero la
		// identidad real sale de la sesión: sin sesión no hay stream, y
		// solo staff puede mirar el feed de otro usuario.
		p, ok := middleware.GetPrincipal(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if userID != p.UserID && !p.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		lastID, _ := strconv.ParseInt(r.URL.Query().Get("last_id"), 10, 64)
		if lastID < 0 {
			lastID = 0
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		// que nginx y amigos no bufferen el stream
		h.Set("X-Accel-Buffering", "no")

		send := func(ev streamEvent) bool {
			b, err := json.Marshal(ev)
			if err != nil {
				return false
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !send(streamEvent{Type: "connection", Message: "connected"}) {
			return
		}

		ctx := r.Context()
		interval := pollInterval

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
			interval = pollInterval

			batch, err := svc.After(ctx, userID, lastID, streamBatch)
			if err != nil {
				if isSchemaError(err) {
					// setup transitorio (tabla aún no creada): avisamos y
					// esperamos más antes de reintentar
					log.Warn("stream schema not ready", map[string]any{"user_id": userID, "err": err.Error()})
					send(streamEvent{Type: "error", Message: "notifications not ready"})
					interval = pollInterval * 3
					continue
				}

				log.Error("stream poll failed", map[string]any{"user_id": userID, "err": err.Error()})
				send(streamEvent{Type: "error", Message: "stream closed"})
				return
			}

			for i := range batch {
				n := batch[i]
				if !send(streamEvent{Type: "notification", Data: &n}) {
					return
				}
				if n.ID > lastID {
					lastID = n.ID
				}
			}
		}
	}
}

// isSchemaError clasifica errores de "la tabla todavía no existe",
// que tratamos como condición transitoria de setup.
func isSchemaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "table") && !strings.Contains(msg, "relation") {
		return false
	}
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "no such")
}
