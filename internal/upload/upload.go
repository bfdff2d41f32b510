// Package upload maneja POST /api/upload: imágenes de perfil y de
// producto vía multipart. El tipo real se detecta por magic bytes,
// nunca por la extensión o el Content-Type que declare el cliente.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
)

const maxUploadBytes = 10 << 20

// ImageSetter persiste la ruta de la imagen en la entidad dueña
// (users.Service y products.Service lo implementan).
type ImageSetter interface {
	SetImagePath(ctx context.Context, id, path string) error
}

type Handler struct {
	dir      string
	profiles ImageSetter
	products ImageSetter
	log      logger.Logger
	now      func() time.Time
}

func NewHandler(dir string, profiles, products ImageSetter, log logger.Logger) *Handler {
	return &Handler{dir: dir, profiles: profiles, products: products, log: log, now: time.Now}
}

// SetNow fija el reloj en tests.
func (h *Handler) SetNow(now func() time.Time) { h.now = now }

// ext por tipo sniffeado. Todo lo demás se rechaza.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		fail(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, "Invalid multipart body")
		return
	}

	kind := strings.TrimSpace(r.FormValue("kind"))
	id := strings.TrimSpace(r.FormValue("id"))

	var setter ImageSetter
	switch kind {
	case "profile":
		// Cada uno sube su propia foto; staff puede subir la de otro.
		if id == "" {
			id = p.UserID
		}
		if id != p.UserID && !p.IsStaff() {
			fail(w, "Forbidden")
			return
		}
		setter = h.profiles
	case "product":
		if !p.IsStaff() {
			fail(w, "Forbidden")
			return
		}
		if id == "" {
			fail(w, "Product id is required")
			return
		}
		setter = h.products
	default:
		fail(w, "Unknown upload kind")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		fail(w, "Image file is required")
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		fail(w, "Could not read image")
		return
	}
	head = head[:n]

	ext, ok := allowed[http.DetectContentType(head)]
	if !ok {
		fail(w, "Unsupported image type")
		return
	}

	rel := filepath.Join(kind, fmt.Sprintf("%s_%d%s", id, h.now().UnixNano(), ext))
	dst := filepath.Join(h.dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		h.log.Error("upload mkdir failed", map[string]any{"err": err.Error()})
		fail(w, "Could not store image")
		return
	}

	out, err := os.Create(dst)
	if err != nil {
		h.log.Error("upload create failed", map[string]any{"err": err.Error()})
		fail(w, "Could not store image")
		return
	}
	defer out.Close()

	if _, err := out.Write(head); err == nil {
		_, err = io.Copy(out, file)
	}
	if err != nil {
		_ = os.Remove(dst)
		h.log.Error("upload write failed", map[string]any{"err": err.Error()})
		fail(w, "Could not store image")
		return
	}

	if err := setter.SetImagePath(r.Context(), id, rel); err != nil {
		_ = os.Remove(dst)
		fail(w, "Could not attach image")
		return
	}

	writeJSON(w, map[string]any{"success": true, "data": map[string]any{"path": rel}})
}

func fail(w http.ResponseWriter, msg string) {
	writeJSON(w, map[string]any{"success": false, "message": msg})
}

// Mismo envelope y mismo contrato de status que el dispatch: siempre 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
