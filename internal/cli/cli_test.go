package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Importer/internal/domain"
	"github.com/shaiso/Importer/internal/fetcher"
	"github.com/shaiso/Importer/internal/workbook"
	"github.com/shaiso/Importer/internal/workbook/workbooktest"
)

const testSheet = "Tier"

// capture собирает вывод команды.
type capture struct {
	json     bool
	out, err bytes.Buffer
}

func (c *capture) output() *Output {
	return NewOutputTo(c.json, &c.out, &c.err)
}

// execute выполняет команду с аргументами.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.xlsx")
	data := workbooktest.Build(t, workbooktest.Categories(testSheet), workbooktest.Sheet{Name: "Notes"})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return path
}

// --- Output ---

func TestOutput_Forest(t *testing.T) {
	var w, errW bytes.Buffer
	out := NewOutputTo(false, &w, &errW)

	out.Forest(domain.Forest{
		{Name: "A", Level: 1, Parent: domain.NoParent, Row: 2},
		{Name: "B", Level: 2, Parent: 0, Row: 3},
	})

	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %q", w.String())
	}
	if !strings.HasPrefix(lines[0], "ROW") {
		t.Errorf("unexpected header %q", lines[0])
	}
	// колонка PARENT шириной 8, имя ребёнка с отступом в 2 пробела
	if !strings.HasSuffix(lines[2], "-"+strings.Repeat(" ", 7)+"A") {
		t.Errorf("root should have no parent, got %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "A"+strings.Repeat(" ", 9)+"B") {
		t.Errorf("child should be indented, got %q", lines[3])
	}
}

func TestOutput_ForestJSON(t *testing.T) {
	var w bytes.Buffer
	out := NewOutputTo(true, &w, &bytes.Buffer{})

	out.Forest(domain.Forest{
		{Name: "A", Level: 1, Parent: domain.NoParent, Row: 2},
		{Name: "B", Level: 2, Parent: 0, Row: 3},
	})

	var nodes []domain.Node
	if err := json.Unmarshal(w.Bytes(), &nodes); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "A" || len(nodes[0].Children) != 1 {
		t.Errorf("unexpected nodes %+v", nodes)
	}
}

// --- parse ---

func TestParseCmd(t *testing.T) {
	path := writeWorkbook(t)
	c := &capture{}

	err := execute(NewParseCmd(Defaults{Sheet: testSheet}, c.output), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"A", "B", "C", "B2"} {
		if !strings.Contains(c.out.String(), name) {
			t.Errorf("expected %s in output:\n%s", name, c.out.String())
		}
	}
	if !strings.Contains(c.err.String(), "4 categories, 1 roots, depth 3") {
		t.Errorf("unexpected summary %q", c.err.String())
	}
}

func TestParseCmd_ListSheets(t *testing.T) {
	path := writeWorkbook(t)
	c := &capture{json: true}

	if err := execute(NewParseCmd(Defaults{Sheet: testSheet}, c.output), path, "--list-sheets"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sheets []string
	if err := json.Unmarshal(c.out.Bytes(), &sheets); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(sheets) != 2 || sheets[0] != testSheet || sheets[1] != "Notes" {
		t.Errorf("unexpected sheets %v", sheets)
	}
}

func TestParseCmd_MissingSheet(t *testing.T) {
	path := writeWorkbook(t)
	c := &capture{}

	err := execute(NewParseCmd(Defaults{Sheet: testSheet}, c.output), path, "--sheet", "Categories v1")
	if !errors.Is(err, workbook.ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestParseCmd_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("just text"), 0o644)

	c := &capture{}
	if err := execute(NewParseCmd(Defaults{Sheet: testSheet}, c.output), path); !errors.Is(err, workbook.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

// --- fetch ---

func TestFetchCmd(t *testing.T) {
	data := workbooktest.Build(t, workbooktest.Categories(testSheet))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", fetcher.ContentTypeXLSX)
		if r.URL.Path != "/files/categories.xlsx" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	defaults := Defaults{APIURL: "http://127.0.0.1:1", Sheet: testSheet, Timeout: 5 * time.Second}

	c := &capture{json: true}
	if err := execute(NewFetchCmd(defaults, c.output), "categories.xlsx", "--api-url", server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var nodes []domain.Node
	if err := json.Unmarshal(c.out.Bytes(), &nodes); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "A" {
		t.Errorf("unexpected nodes %+v", nodes)
	}

	err := execute(NewFetchCmd(defaults, (&capture{}).output), "missing.xlsx", "--api-url", server.URL)
	if !errors.Is(err, fetcher.ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
}

// --- enqueue ---

type fakeEnqueuer struct {
	files []string
	fail  bool
}

func (e *fakeEnqueuer) PublishImportRequested(_ context.Context, filename string) (string, error) {
	if e.fail {
		return "", errors.New("channel closed")
	}
	e.files = append(e.files, filename)
	return "msg-" + filename, nil
}

func TestEnqueueCmd(t *testing.T) {
	enq := &fakeEnqueuer{}
	closed := false
	dial := func() (Enqueuer, func() error, error) {
		return enq, func() error { closed = true; return nil }, nil
	}

	c := &capture{}
	if err := execute(NewEnqueueCmd(dial, c.output), "a.xlsx", "b.xlsx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(enq.files) != 2 {
		t.Errorf("expected 2 files enqueued, got %v", enq.files)
	}
	if !strings.Contains(c.out.String(), "msg-b.xlsx") {
		t.Errorf("expected message ids in output:\n%s", c.out.String())
	}
	if !strings.Contains(c.err.String(), "Enqueued 2 import(s)") {
		t.Errorf("unexpected message %q", c.err.String())
	}
	if !closed {
		t.Error("connection should be closed")
	}
}

func TestEnqueueCmd_Errors(t *testing.T) {
	dialErr := func() (Enqueuer, func() error, error) {
		return nil, nil, errors.New("connection refused")
	}
	if err := execute(NewEnqueueCmd(dialErr, (&capture{}).output), "a.xlsx"); err == nil {
		t.Error("expected dial error")
	}

	failing := func() (Enqueuer, func() error, error) {
		return &fakeEnqueuer{fail: true}, func() error { return nil }, nil
	}
	if err := execute(NewEnqueueCmd(failing, (&capture{}).output), "a.xlsx"); err == nil {
		t.Error("expected publish error")
	}

	if err := execute(NewEnqueueCmd(failing, (&capture{}).output)); err == nil {
		t.Error("expected args error")
	}
}
