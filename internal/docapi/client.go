// Package docapi is the client for the document service: progress-
// tracked uploads, the direct question endpoint, and chat history.
// Unlike the chat API, this service signals failure through HTTP
// status codes, with details in a "detail" field.
package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Client talks to the document service.
type Client struct {
	base   string
	client *http.Client
}

// New creates a client. base is the full prefix including the API
// version path, e.g. "http://localhost:8000/api/v1".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		// Uploads of large documents can be slow; no overall timeout.
		client: &http.Client{},
	}
}

// Error is a failure reported by the document service.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("document service returned status %d", e.Status)
}

type errorBody struct {
	Detail string `json:"detail"`
}

// UploadResult is the service's response to a successful upload.
type UploadResult struct {
	DocID       string `json:"doc_id"`
	FileURL     string `json:"file_url"`
	ChunksCount int    `json:"chunks_count"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// progressReader reports bytes read through it.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	progress func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}

// Upload streams the file at path to the upload endpoint as multipart
// form data (field "file"), reporting progress as file bytes go out.
// A 201 yields the upload result; any other status yields *Error.
func (c *Client) Upload(ctx context.Context, path string, progress func(sent, total int64)) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		_, err = io.Copy(part, &progressReader{r: f, total: info.Size(), progress: progress})
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload-document", pr)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var eb errorBody
		json.Unmarshal(body, &eb)
		return nil, &Error{Status: resp.StatusCode, Detail: eb.Detail}
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return &result, nil
}

// ChatAnswer is the direct chat endpoint's success response.
type ChatAnswer struct {
	Answer      string `json:"answer"`
	ContextUsed bool   `json:"context_used"`
	ChunksCount int    `json:"chunks_count"`
}

// Chat posts a question to the direct chat endpoint. Success and
// failure are decided by the HTTP status, not the payload.
func (c *Client) Chat(ctx context.Context, query string) (*ChatAnswer, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		json.Unmarshal(body, &eb)
		return nil, &Error{Status: resp.StatusCode, Detail: eb.Detail}
	}

	var answer ChatAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	return &answer, nil
}

// HistoryEntry is one past question/answer pair.
type HistoryEntry struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type historyBody struct {
	History []HistoryEntry `json:"history"`
	Count   int            `json:"count"`
}

// History fetches the most recent entries, newest first. Nothing is
// cached; every call re-fetches.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	url := c.base + "/history?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating history request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading history response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		json.Unmarshal(body, &eb)
		return nil, &Error{Status: resp.StatusCode, Detail: eb.Detail}
	}

	var hb historyBody
	if err := json.Unmarshal(body, &hb); err != nil {
		return nil, fmt.Errorf("decoding history response: %w", err)
	}
	return hb.History, nil
}

// Health pings the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating health request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &Error{Status: resp.StatusCode}
	}
	return nil
}
