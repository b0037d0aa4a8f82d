// Package upload stores item photos on local disk and serves them back
// under /uploads/.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/granary/granary/internal/platform/httpx"
)

// maxUploadBytes caps a single photo at 10 MiB.
const maxUploadBytes = 10 << 20

var allowedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// Handler accepts multipart image uploads.
type Handler struct {
	logger *slog.Logger
	dir    string
	now    func() time.Time
}

// NewHandler builds a Handler writing under dir.
func NewHandler(logger *slog.Logger, dir string) *Handler {
	return &Handler{logger: logger, dir: dir, now: time.Now}
}

// MountRoutes registers the upload route. Sits behind auth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/upload/image", h.uploadImage)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Fail(w, "图片上传失败，请选择文件")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		httpx.Fail(w, "不支持的图片格式")
		return
	}

	day := h.now().Format("20060102")
	dir := filepath.Join(h.dir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.logger.Error("create upload dir", slog.Any("error", err))
		httpx.Deny(w, http.StatusInternalServerError, "服务器错误")
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		h.logger.Error("create upload file", slog.Any("error", err))
		httpx.Deny(w, http.StatusInternalServerError, "服务器错误")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.logger.Error("write upload file", slog.Any("error", err))
		httpx.Deny(w, http.StatusInternalServerError, "服务器错误")
		return
	}

	httpx.OK(w, map[string]any{"url": fmt.Sprintf("/uploads/%s/%s", day, name)})
}

// FileServer serves stored uploads from dir at the /uploads/ prefix.
func FileServer(dir string) http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
}
