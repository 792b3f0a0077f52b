package worker

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/shaiso/Importer/internal/domain"
)

// recentImports — журнал последних импортов в памяти.
// Используется, когда история в БД не ведётся.
type recentImports struct {
	mu    sync.Mutex
	size  int
	items []domain.Import // новые в конце
}

func newRecentImports(size int) *recentImports {
	return &recentImports{size: size}
}

// put добавляет импорт или обновляет запись с тем же ID.
func (r *recentImports) put(imp domain.Import) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == imp.ID {
			r.items[i] = imp
			return
		}
	}

	r.items = append(r.items, imp)
	if len(r.items) > r.size {
		r.items = r.items[len(r.items)-r.size:]
	}
}

// list возвращает до limit импортов, новые первыми.
func (r *recentImports) list(limit int) []domain.Import {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.items) {
		limit = len(r.items)
	}

	out := make([]domain.Import, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out
}

// listResponse — ответ /imports.
type listResponse struct {
	Data  []domain.Import `json:"data"`
	Total int             `json:"total"`
}

// Handler возвращает HTTP-обработчик /healthz и /imports.
func (w *Worker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", w.handleHealth)
	mux.HandleFunc("GET /imports", w.handleImports)
	return mux
}

// handleHealth — 200, пока есть соединение с брокером.
func (w *Worker) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	if w.conn != nil && !w.conn.IsConnected() {
		http.Error(rw, "amqp disconnected", http.StatusServiceUnavailable)
		return
	}
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte("ok"))
}

// handleImports отдаёт последние импорты: из истории, если она есть.
func (w *Worker) handleImports(rw http.ResponseWriter, r *http.Request) {
	limit := defaultRecentSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(rw, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	var imports []domain.Import
	if w.history != nil {
		var err error
		imports, err = w.history.ListRecent(r.Context(), limit)
		if err != nil {
			w.logger.Error("failed to list imports", "error", err)
			writeJSON(rw, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	} else {
		imports = w.recent.list(limit)
	}

	writeJSON(rw, http.StatusOK, listResponse{Data: imports, Total: len(imports)})
}

func writeJSON(rw http.ResponseWriter, status int, data any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(data)
}
