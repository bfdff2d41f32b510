// Package streamclient es el consumidor Go del stream de notificaciones:
// mantiene la conexión SSE viva, reconecta con backoff exponencial y cae
// a polling del endpoint de lista cuando el stream no se puede abrir.
// El watermark (último id visto) se informa por callback para que el
// caller lo persista y la reconexión no pierda ni repita filas.
package streamclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Notification es la fila del feed tal como viaja por el wire.
type Notification struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  string         `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	Read      bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

type streamEvent struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Data    *Notification `json:"data,omitempty"`
}

type Options struct {
	// BaseURL del API, sin slash final (http://host:8080).
	BaseURL string

	// UserID dueño del feed.
	UserID string

	// LastID es el watermark inicial (0 = todo lo que llegue de ahora en más).
	LastID int64

	// HTTPClient debe llevar la sesión (cookie jar): tanto el stream como
	// el fallback de polling la exigen; nil usa http.DefaultClient.
	HTTPClient *http.Client

	// OnNotification corre por cada fila nueva, en orden de id.
	OnNotification func(Notification)

	// OnWatermark corre cada vez que avanza el último id visto; el caller
	// lo persiste para reconectar sin duplicados.
	OnWatermark func(int64)

	// MaxElapsed limita el total de reintentos de conexión seguidos sin
	// éxito; 0 usa 5 minutos. Superado el límite, Run devuelve error.
	MaxElapsed time.Duration
}

type Client struct {
	opts Options
	http *http.Client
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.UserID == "" {
		return nil, errors.New("streamclient: BaseURL and UserID are required")
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = 5 * time.Minute
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{opts: opts, http: hc}, nil
}

// Run consume el stream hasta que el contexto se cancele o se agote el
// presupuesto de reconexión. Cada conexión que entrega al menos un evento
// resetea el backoff.
func (c *Client) Run(ctx context.Context) error {
	lastID := c.opts.LastID

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = c.opts.MaxElapsed

	for {
		delivered, err := c.consume(ctx, &lastID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered {
			bo.Reset()
		}

		if err != nil {
			// el stream no anduvo: al menos traemos lo pendiente por polling
			c.pollOnce(ctx, &lastID)
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("streamclient: gave up reconnecting after %s: %w", c.opts.MaxElapsed, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consume abre una conexión SSE y procesa eventos hasta que se corte.
// Devuelve si llegó al menos una notificación.
func (c *Client) consume(ctx context.Context, lastID *int64) (bool, error) {
	u := fmt.Sprintf("%s/api/notifications/stream?user_id=%s&last_id=%d",
		c.opts.BaseURL, url.QueryEscape(c.opts.UserID), *lastID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream status %d", resp.StatusCode)
	}

	delivered := false
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "notification":
			if ev.Data == nil {
				continue
			}
			delivered = true
			c.deliver(*ev.Data, lastID)
		case "error":
			return delivered, fmt.Errorf("stream error: %s", ev.Message)
		}
		// "connection" y cualquier tipo futuro se ignoran
	}
	// el server cortó: reconectar desde el watermark
	return delivered, sc.Err()
}

// pollOnce es el fallback: GET /api?action=get_notifications y filtrado
// local por watermark. La lista llega newest-first; entregamos en orden.
func (c *Client) pollOnce(ctx context.Context, lastID *int64) {
	u := c.opts.BaseURL + "/api?action=get_notifications&limit=100"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var out struct {
		Success bool           `json:"success"`
		Data    []Notification `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || !out.Success {
		return
	}

	for i := len(out.Data) - 1; i >= 0; i-- {
		if n := out.Data[i]; n.ID > *lastID {
			c.deliver(n, lastID)
		}
	}
}

func (c *Client) deliver(n Notification, lastID *int64) {
	if c.opts.OnNotification != nil {
		c.opts.OnNotification(n)
	}
	if n.ID > *lastID {
		*lastID = n.ID
		if c.opts.OnWatermark != nil {
			c.opts.OnWatermark(n.ID)
		}
	}
}
