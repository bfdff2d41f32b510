package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/router"
)

const (
	adminEmail = "admin@clinic.test"
	adminPass  = "Admin1234"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	h, err := router.New(router.Options{
		Cfg: config.Config{
			DBFile:             "memory://",
			JWTSecret:          "test-secret",
			UploadDir:          t.TempDir(),
			AdminEmail:         adminEmail,
			AdminPassword:      adminPass,
			StreamPollInterval: 50 * time.Millisecond,
		},
		Log: logger.Nop(),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

// client es un usuario del API con su propio cookie jar (sesión).
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("jar: %v", err)
	}
	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

// do manda una acción POST /api y devuelve el envelope decodificado.
func (c *client) do(payload map[string]any) map[string]any {
	c.t.Helper()

	b, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.base+"/api", "application/json", bytes.NewReader(b))
	if err != nil {
		c.t.Fatalf("POST /api: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("action %v: status %d, el contrato es 200", payload["action"], resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.t.Fatalf("action %v: respuesta no es JSON: %v", payload["action"], err)
	}
	return out
}

// must es do + assert de success:true.
func (c *client) must(payload map[string]any) map[string]any {
	c.t.Helper()
	out := c.do(payload)
	if out["success"] != true {
		c.t.Fatalf("action %v falló: %v", payload["action"], out["message"])
	}
	return out
}

func (c *client) register(name, email, pass string) {
	c.t.Helper()
	c.must(map[string]any{"action": "register", "name": name, "email": email, "password": pass})
}

func (c *client) login(email, pass string) map[string]any {
	c.t.Helper()
	return c.do(map[string]any{"action": "login", "email": email, "password": pass})
}

func (c *client) mustLogin(email, pass string) {
	c.t.Helper()
	out := c.login(email, pass)
	if out["success"] != true {
		c.t.Fatalf("login %s falló: %v", email, out["message"])
	}
}

// id saca un campo id de un sub-objeto del envelope ("pet", "order", etc).
func id(t *testing.T, out map[string]any, key string) string {
	t.Helper()
	obj, ok := out[key].(map[string]any)
	if !ok {
		t.Fatalf("respuesta sin objeto %q: %v", key, out)
	}
	s, _ := obj["id"].(string)
	if s == "" {
		t.Fatalf("objeto %q sin id: %v", key, obj)
	}
	return s
}

func (c *client) notifications() []map[string]any {
	c.t.Helper()
	out := c.must(map[string]any{"action": "get_notifications"})
	raw, _ := out["data"].([]any)
	list := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			list = append(list, m)
		}
	}
	return list
}

func hasNotification(list []map[string]any, ntype string) bool {
	for _, n := range list {
		if n["type"] == ntype {
			return true
		}
	}
	return false
}

func TestEndToEnd_ClinicFlow(t *testing.T) {
	ts := newTestServer(t)

	staff := newClient(t, ts)
	staff.mustLogin(adminEmail, adminPass)

	ana := newClient(t, ts)
	ana.register("Ana", "ana@example.com", "Secret1234")
	ana.mustLogin("ana@example.com", "Secret1234")

	// welcome del registro
	if !hasNotification(ana.notifications(), "welcome") {
		t.Fatal("el registro no dejó la notificación welcome")
	}

	// staff publica un servicio, Ana registra su mascota
	svcID := id(t, staff.must(map[string]any{
		"action": "add_service", "name": "Consulta general",
		"description": "chequeo y vacunas", "duration_min": 30, "price": 25.0,
	}), "service")

	petID := id(t, ana.must(map[string]any{
		"action": "add_pet", "name": "Milo", "species": "dog",
		"breed": "mixed", "sex": "male", "weight_kg": 12.5,
	}), "pet")

	// reserva a futuro
	day := time.Now().Add(72 * time.Hour).Format("2006-01-02")
	apptID := id(t, ana.must(map[string]any{
		"action": "book_appointment", "pet_id": petID, "service_id": svcID,
		"date": day, "time": "10:30", "notes": "primera visita",
	}), "appointment")

	if !hasNotification(staff.notifications(), "appointment_booked") {
		t.Fatal("staff no recibió appointment_booked")
	}

	// la historia clínica exige turno completado
	out := staff.do(map[string]any{
		"action": "add_medical_record", "appointment_id": apptID,
		"diagnosis": "sano", "treatment": "ninguno",
	})
	if out["success"] != false {
		t.Fatal("aceptó historia clínica con el turno pendiente")
	}

	for _, st := range []string{"confirmed", "in_progress", "completed"} {
		staff.must(map[string]any{"action": "update_appointment_status", "appointment_id": apptID, "status": st})
	}

	recID := id(t, staff.must(map[string]any{
		"action": "add_medical_record", "appointment_id": apptID,
		"diagnosis": "sano", "treatment": "ninguno", "medication": "", "follow_up": "anual",
	}), "record")

	// una por turno
	out = staff.do(map[string]any{
		"action": "add_medical_record", "appointment_id": apptID, "diagnosis": "otra",
	})
	if out["success"] != false {
		t.Fatal("aceptó una segunda historia para el mismo turno")
	}

	// Ana ve el cambio de estado y la historia nueva
	anaNotifs := ana.notifications()
	if !hasNotification(anaNotifs, "appointment_status") {
		t.Fatal("Ana no recibió appointment_status")
	}
	if !hasNotification(anaNotifs, "medical_record_added") {
		t.Fatal("Ana no recibió medical_record_added")
	}

	ana.must(map[string]any{"action": "get_medical_record", "record_id": recID})

	// reporte imprimible por GET
	resp, err := ana.http.Get(ts.URL + "/api?action=generate_pdf&pet_id=" + petID)
	if err != nil {
		t.Fatalf("generate_pdf: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("generate_pdf content-type = %q", ct)
	}
}

func TestEndToEnd_LoginLockout(t *testing.T) {
	ts := newTestServer(t)

	jane := newClient(t, ts)
	jane.register("Jane Doe", "jane@example.com", "Secret1A8")

	for i := 1; i <= 4; i++ {
		out := jane.login("jane@example.com", "wrong-pass")
		if out["success"] != false {
			t.Fatalf("intento %d con password malo no falló", i)
		}
		msg, _ := out["message"].(string)
		if !strings.Contains(msg, fmt.Sprintf("%d attempts remaining", 5-i)) {
			t.Fatalf("intento %d: mensaje %q", i, msg)
		}
	}

	// el quinto fallo dispara el lockout
	out := jane.login("jane@example.com", "wrong-pass")
	msg, _ := out["message"].(string)
	if out["success"] != false || !strings.Contains(msg, "Account locked") {
		t.Fatalf("quinto fallo: %v", out)
	}

	// con lockout vigente, ni el password correcto entra
	out = jane.login("jane@example.com", "Secret1A8")
	msg, _ = out["message"].(string)
	if out["success"] != false || !strings.Contains(msg, "Account locked") {
		t.Fatalf("login correcto durante lockout: %v", out)
	}

	// el staff recibió la alerta high
	staff := newClient(t, ts)
	staff.mustLogin(adminEmail, adminPass)
	var alert map[string]any
	for _, n := range staff.notifications() {
		if n["type"] == "security_alert" {
			alert = n
			break
		}
	}
	if alert == nil {
		t.Fatal("staff no recibió security_alert")
	}
	if alert["priority"] != "high" {
		t.Fatalf("security_alert priority = %v", alert["priority"])
	}
}

func TestEndToEnd_ShopFlow(t *testing.T) {
	ts := newTestServer(t)

	staff := newClient(t, ts)
	staff.mustLogin(adminEmail, adminPass)

	leashID := id(t, staff.must(map[string]any{
		"action": "add_product", "name": "Leash", "description": "correa corta",
		"price": 12.0, "stock": 1,
	}), "product")
	foodID := id(t, staff.must(map[string]any{
		"action": "add_product", "name": "Dog food", "price": 30.0, "stock": 10,
	}), "product")

	ana := newClient(t, ts)
	ana.register("Ana", "ana@example.com", "Secret1234")
	ana.mustLogin("ana@example.com", "Secret1234")

	beto := newClient(t, ts)
	beto.register("Beto", "beto@example.com", "Secret1234")
	beto.mustLogin("beto@example.com", "Secret1234")

	// Ana se lleva la última correa
	orderOut := ana.must(map[string]any{"action": "buy_now", "product_id": leashID, "quantity": 1})
	orderID := id(t, orderOut, "order")

	// Beto llega tarde: sin stock
	out := beto.do(map[string]any{"action": "buy_now", "product_id": leashID, "quantity": 1})
	if out["success"] != false {
		t.Fatal("segunda compra de la última unidad no falló")
	}

	// carrito + checkout: vacía el carrito y congela nombre y precio
	ana.must(map[string]any{"action": "add_to_cart", "product_id": foodID, "quantity": 2})

	coOut := ana.must(map[string]any{"action": "checkout"})
	coID := id(t, coOut, "order")
	order, _ := coOut["order"].(map[string]any)
	if total, _ := order["total"].(float64); total != 60.0 {
		t.Fatalf("total = %v, quería 60", total)
	}

	cartOut := ana.must(map[string]any{"action": "get_cart"})
	if lines, _ := cartOut["data"].([]any); len(lines) != 0 {
		t.Fatalf("el carrito no quedó vacío: %v", lines)
	}

	// editar el producto después no toca la orden ya colocada
	staff.must(map[string]any{"action": "update_product", "product_id": foodID, "price": 99.0})
	getOut := ana.must(map[string]any{"action": "get_order", "order_id": coID})
	placed, _ := getOut["data"].(map[string]any)
	if total, _ := placed["total"].(float64); total != 60.0 {
		t.Fatalf("total tras editar el producto = %v, quería 60", total)
	}

	// staff avanza la orden y Ana se entera
	staff.must(map[string]any{"action": "update_order_status", "order_id": orderID, "status": "shipped"})

	anaNotifs := ana.notifications()
	if !hasNotification(anaNotifs, "order_placed") {
		t.Fatal("Ana no recibió order_placed")
	}
	if !hasNotification(anaNotifs, "order_status") {
		t.Fatal("Ana no recibió order_status")
	}
}

func TestEndToEnd_NotificationPreferenceMutes(t *testing.T) {
	ts := newTestServer(t)

	staff := newClient(t, ts)
	staff.mustLogin(adminEmail, adminPass)
	prodID := id(t, staff.must(map[string]any{
		"action": "add_product", "name": "Toy", "price": 5.0, "stock": 10,
	}), "product")

	ana := newClient(t, ts)
	ana.register("Ana", "ana@example.com", "Secret1234")
	ana.mustLogin("ana@example.com", "Secret1234")

	ana.must(map[string]any{
		"action":      "update_notification_preferences",
		"preferences": map[string]bool{"order_placed": false},
	})

	ana.must(map[string]any{"action": "buy_now", "product_id": prodID, "quantity": 1})

	if hasNotification(ana.notifications(), "order_placed") {
		t.Fatal("llegó order_placed con el tipo deshabilitado")
	}

	// re-habilitado vuelve a entregar
	ana.must(map[string]any{
		"action":      "update_notification_preferences",
		"preferences": map[string]bool{"order_placed": true},
	})
	ana.must(map[string]any{"action": "buy_now", "product_id": prodID, "quantity": 1})

	if !hasNotification(ana.notifications(), "order_placed") {
		t.Fatal("no llegó order_placed tras re-habilitar")
	}
}

func TestEndToEnd_MalformedJSONIsTheOnly400(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("JSON malformado devolvió %d, quería 400", resp.StatusCode)
	}

	// acción desconocida: 200 con success:false
	resp2, err := http.Post(ts.URL+"/api", "application/json", strings.NewReader(`{"action":"frobnicate"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("acción desconocida devolvió %d, quería 200", resp2.StatusCode)
	}

	// preflight CORS: 200 vacío para cualquier path
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api", nil)
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("preflight devolvió %d", resp3.StatusCode)
	}
	if resp3.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("preflight sin Access-Control-Allow-Origin: *")
	}
}
