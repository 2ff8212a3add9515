package docapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadSuccess(t *testing.T) {
	var gotField, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart: %v", err)
		}
		for field, headers := range r.MultipartForm.File {
			gotField = field
			gotFile = headers[0].Filename
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"doc_id":"d1","chunks_count":3,"status":"ok"}`)
	}))
	t.Cleanup(srv.Close)

	path := writeFile(t, "notes.txt", "hello notes")
	client := New(srv.URL + "/api/v1")

	var lastSent, total int64
	result, err := client.Upload(context.Background(), path, func(sent, tot int64) {
		lastSent, total = sent, tot
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.DocID != "d1" || result.ChunksCount != 3 {
		t.Errorf("result = %+v", result)
	}
	if gotField != "file" || gotFile != "notes.txt" {
		t.Errorf("multipart field %q file %q", gotField, gotFile)
	}
	if lastSent != int64(len("hello notes")) || total != lastSent {
		t.Errorf("progress sent=%d total=%d", lastSent, total)
	}
}

func TestUploadErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"file too large"}`)
	}))
	t.Cleanup(srv.Close)

	path := writeFile(t, "notes.txt", "x")
	_, err := New(srv.URL).Upload(context.Background(), path, nil)

	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if de.Detail != "file too large" || de.Status != http.StatusBadRequest {
		t.Errorf("error = %+v", de)
	}
}

func TestChatStatusDriven(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":"42","context_used":true,"chunks_count":5}`)
	}))
	t.Cleanup(srv.Close)

	ans, err := New(srv.URL).Chat(context.Background(), "meaning?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if ans.Answer != "42" || !ans.ContextUsed || ans.ChunksCount != 5 {
		t.Errorf("answer = %+v", ans)
	}

	fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"detail":"no documents indexed"}`)
	}))
	t.Cleanup(fail.Close)

	_, err = New(fail.URL).Chat(context.Background(), "q")
	var de *Error
	if !errors.As(err, &de) || de.Detail != "no documents indexed" {
		t.Errorf("expected detail error, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"history":[{"question":"q1","answer":"a1"},{"question":"q2","answer":"a2"}],"count":2}`)
	}))
	t.Cleanup(srv.Close)

	entries, err := New(srv.URL).History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if gotLimit != "10" {
		t.Errorf("limit = %q", gotLimit)
	}
	if len(entries) != 2 || entries[0].Question != "q1" || entries[1].Answer != "a2" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestExtensionGate(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"a.pdf", true},
		{"a.txt", true},
		{"a.md", true},
		{"a.docx", true},
		{"a.PDF", true},
		{"a.TxT", true},
		{"a.doc", false},
		{"a.exe", false},
		{"a", false},
		{"a.pdf.exe", false},
	}
	for _, c := range cases {
		if got := AllowedFile(c.name); got != c.want {
			t.Errorf("AllowedFile(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestUploaderRejectsBeforeNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"doc_id":"d1","chunks_count":1}`)
	}))
	t.Cleanup(srv.Close)

	u := NewUploader(New(srv.URL))
	path := writeFile(t, "malware.exe", "nope")
	_, err := u.Upload(context.Background(), path, nil)
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("rejected file reached the network (%d calls)", calls)
	}
}

func TestUploaderBusyGuard(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"doc_id":"d1","chunks_count":1}`)
	}))
	t.Cleanup(srv.Close)

	u := NewUploader(New(srv.URL))
	path := writeFile(t, "notes.txt", "hello")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := u.Upload(context.Background(), path, nil); err != nil {
			t.Errorf("first upload: %v", err)
		}
	}()

	// Wait for the first upload to occupy the uploader.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first upload never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The overlapping submission is a no-op.
	if _, err := u.Upload(context.Background(), path, nil); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d uploads, want 1", got)
	}
}
