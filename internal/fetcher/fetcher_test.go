package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fileServer отдаёт body с указанным статусом и Content-Type.
// contentType == "" — заголовок не отправляется вовсе.
func fileServer(t *testing.T, status int, contentType string, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if contentType == "" {
			// Запрещаем net/http угадывать Content-Type по телу
			w.Header()["Content-Type"] = nil
		} else {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestFetch_Success(t *testing.T) {
	body := []byte("PK\x03\x04 fake xlsx bytes")
	server, calls := fileServer(t, http.StatusOK, ContentTypeXLSX, body)

	f := New(Config{BaseURL: server.URL})
	data, err := f.Fetch(context.Background(), "categories.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(data, body) {
		t.Errorf("expected body %q, got %q", body, data)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one request, got %d", calls.Load())
	}
}

func TestFetch_RequestPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", ContentTypeXLSX)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := New(Config{BaseURL: server.URL + "/"})
	if _, err := f.Fetch(context.Background(), "Q3 categories.xlsx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/files/Q3%20categories.xlsx" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestFetch_ContentTypeWithParams(t *testing.T) {
	server, _ := fileServer(t, http.StatusOK, ContentTypeXLSX+"; charset=binary", []byte("data"))

	f := New(Config{BaseURL: server.URL})
	if _, err := f.Fetch(context.Background(), "a.xlsx"); err != nil {
		t.Fatalf("content type with params should be accepted: %v", err)
	}
}

func TestFetch_MissingContentType(t *testing.T) {
	server, _ := fileServer(t, http.StatusOK, "", []byte("data"))

	f := New(Config{BaseURL: server.URL})
	_, err := f.Fetch(context.Background(), "a.xlsx")

	if !errors.Is(err, ErrMissingContentType) {
		t.Fatalf("expected ErrMissingContentType, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing content type") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestFetch_UnsupportedContentTypeRegardlessOfStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"ok html", http.StatusOK, "text/html", "<html></html>"},
		{"ok legacy xls", http.StatusOK, "application/vnd.ms-excel", "\xd0\xcf\x11\xe0"},
		{"not found json", http.StatusNotFound, "application/json", `{"error":"not found"}`},
		{"server error", http.StatusInternalServerError, "text/plain", "boom"},
		{"empty body", http.StatusOK, "application/octet-stream", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := fileServer(t, tt.status, tt.contentType, []byte(tt.body))

			f := New(Config{BaseURL: server.URL})
			_, err := f.Fetch(context.Background(), "a.xlsx")

			if !errors.Is(err, ErrUnsupportedFileType) {
				t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
			}
			if errors.Is(err, ErrFetch) {
				t.Errorf("validation error must not match ErrFetch: %v", err)
			}
		})
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server, _ := fileServer(t, http.StatusNotFound, ContentTypeXLSX, nil)

	f := New(Config{BaseURL: server.URL})
	_, err := f.Fetch(context.Background(), "missing.xlsx")

	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("message should carry the status: %q", err.Error())
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	addr := server.URL
	server.Close()

	f := New(Config{BaseURL: addr})
	_, err := f.Fetch(context.Background(), "a.xlsx")

	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Errorf("transport error must not match ErrValidation")
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", ContentTypeXLSX)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), "slow.xlsx")

	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch on timeout, got %v", err)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	server, _ := fileServer(t, http.StatusOK, ContentTypeXLSX, bytes.Repeat([]byte("x"), 33))

	f := New(Config{BaseURL: server.URL, MaxBytes: 32})
	_, err := f.Fetch(context.Background(), "big.xlsx")

	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	// Ровно лимит — допустимо
	server, _ = fileServer(t, http.StatusOK, ContentTypeXLSX, bytes.Repeat([]byte("x"), 32))
	f = New(Config{BaseURL: server.URL, MaxBytes: 32})
	if _, err := f.Fetch(context.Background(), "exact.xlsx"); err != nil {
		t.Errorf("body of exactly MaxBytes should pass: %v", err)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		base     string
		filename string
		want     string
	}{
		{"http://files:8081", "a.xlsx", "http://files:8081/files/a.xlsx"},
		{"http://files:8081/", "a.xlsx", "http://files:8081/files/a.xlsx"},
		{"localhost:8081", "a.xlsx", "http://localhost:8081/files/a.xlsx"},
		{"http://files/api", "dir/a.xlsx", "http://files/api/files/dir%2Fa.xlsx"},
		{"", "a.xlsx", DefaultBaseURL + "/files/a.xlsx"},
	}

	for _, tt := range tests {
		got, err := New(Config{BaseURL: tt.base}).URL(tt.filename)
		if err != nil {
			t.Errorf("%s + %s: unexpected error: %v", tt.base, tt.filename, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s + %s: expected %s, got %s", tt.base, tt.filename, tt.want, got)
		}
	}
}

func TestURL_InvalidFilename(t *testing.T) {
	f := New(Config{})

	for _, name := range []string{"", ".", ".."} {
		if _, err := f.URL(name); !errors.Is(err, ErrFetch) {
			t.Errorf("%q: expected ErrFetch, got %v", name, err)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	f := New(Config{})

	if f.baseURL != DefaultBaseURL {
		t.Errorf("expected default base url, got %s", f.baseURL)
	}
	if f.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", f.timeout)
	}
	if f.maxBytes != DefaultMaxBytes {
		t.Errorf("expected default max bytes, got %d", f.maxBytes)
	}
}
