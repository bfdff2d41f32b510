package dispatch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/events"
)

// Result es el envelope JSON de toda acción: {success, message?, data?, ...}.
// Los errores de negocio viajan como success:false con HTTP 200;
// el único 400 es JSON malformado (contrato heredado del frontend).
type Result map[string]any

func OK(fields map[string]any) Result {
	r := Result{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func OKData(data any) Result {
	return Result{"success": true, "data": data}
}

func Fail(msg string) Result {
	return Result{"success": false, "message": msg}
}

// Request envuelve el request HTTP ya ruteado a una acción.
type Request struct {
	Action string
	HTTP   *http.Request

	body json.RawMessage
}

// Bind decodifica el body JSON de la acción (POST). Para acciones GET
// los parámetros van por query string (ver Query/QueryInt).
func (r *Request) Bind(v any) error {
	if len(r.body) == 0 {
		return nil
	}
	return json.Unmarshal(r.body, v)
}

func (r *Request) Query(key string) string {
	return strings.TrimSpace(r.HTTP.URL.Query().Get(key))
}

func (r *Request) QueryInt(key string, def int) int {
	v := r.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// El ResponseWriter se expone para las pocas acciones que setean cookies
// (login/logout); el resto lo ignora y solo devuelve el Result.
type HandlerFunc func(w http.ResponseWriter, r *Request) Result

// Dispatcher mapea action -> handler. Las mutaciones exitosas se
// espejan como evento de dominio hacia el publisher (best-effort).
type Dispatcher struct {
	actions  map[string]HandlerFunc
	mutating map[string]bool
	pub      events.Publisher
	log      logger.Logger
	now      func() time.Time
}

func New(pub events.Publisher, log logger.Logger) *Dispatcher {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Dispatcher{
		actions:  map[string]HandlerFunc{},
		mutating: map[string]bool{},
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// Register registra una acción de lectura.
func (d *Dispatcher) Register(action string, h HandlerFunc) {
	d.actions[action] = h
}

// RegisterMutation registra una acción que cambia estado; al éxito se
// publica {action, user_id, at} al stream de eventos.
func (d *Dispatcher) RegisterMutation(action string, h HandlerFunc) {
	d.actions[action] = h
	d.mutating[action] = true
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Garantía del contrato: siempre sale JSON, incluso ante un panic.
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("dispatch panic", map[string]any{"panic": rec, "path": r.URL.Path})
			writeJSON(w, http.StatusOK, Fail("Internal server error"))
		}
	}()

	var (
		action string
		body   json.RawMessage
	)

	switch r.Method {
	case http.MethodGet:
		action = strings.TrimSpace(r.URL.Query().Get("action"))
	case http.MethodPost:
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("Invalid request body"))
			return
		}
		var env struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON body"))
			return
		}
		action = strings.TrimSpace(env.Action)
		body = raw
	default:
		writeJSON(w, http.StatusOK, Fail("Unsupported method"))
		return
	}

	h, ok := d.actions[action]
	if !ok || action == "" {
		writeJSON(w, http.StatusOK, Fail("Unknown action"))
		return
	}

	res := h(w, &Request{Action: action, HTTP: r, body: body})
	if res == nil {
		// el handler ya escribió su propia respuesta (p.ej. HTML)
		return
	}

	if ok, _ := res["success"].(bool); ok && d.mutating[action] {
		d.publish(r, action)
	}

	writeJSON(w, http.StatusOK, res)
}

func (d *Dispatcher) publish(r *http.Request, action string) {
	userID := ""
	if p, ok := middleware.GetPrincipal(r.Context()); ok {
		userID = p.UserID
	}

	evt, _ := json.Marshal(map[string]any{
		"action":  action,
		"user_id": userID,
		"at":      d.now().UTC().Format(time.RFC3339),
	})

	if err := d.pub.Publish(r.Context(), action, evt); err != nil {
		// espejo best-effort: el request ya respondió OK
		d.log.Warn("event publish failed", map[string]any{"action": action, "err": err.Error()})
	}
}

// Values expone query values para helpers de reportes.
func (r *Request) Values() url.Values { return r.HTTP.URL.Query() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
