package docapi

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

// allowedExtensions is the upload allow-list, matched case-
// insensitively against the file extension.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".docx": true,
}

// UnsupportedFileMessage is the status text shown when a file fails
// the extension gate.
const UnsupportedFileMessage = "Chỉ hỗ trợ file PDF, TXT, MD, DOCX"

var (
	// ErrUnsupportedFile means the file failed the extension gate;
	// nothing was sent.
	ErrUnsupportedFile = errors.New("docapi: " + UnsupportedFileMessage)
	// ErrBusy means an upload is already in flight; the new submission
	// is a no-op.
	ErrBusy = errors.New("docapi: upload already in progress")
)

// AllowedFile reports whether the file's extension passes the gate.
func AllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Uploader serializes uploads: at most one may be in flight, and
// rejected files never reach the network.
type Uploader struct {
	client *Client

	mu   sync.Mutex
	busy bool
}

// NewUploader creates an uploader over the given client.
func NewUploader(client *Client) *Uploader {
	return &Uploader{client: client}
}

// Upload validates and uploads one file. The extension gate runs
// before any network activity; a second call while one is in flight
// returns ErrBusy without issuing a request.
func (u *Uploader) Upload(ctx context.Context, path string, progress func(sent, total int64)) (*UploadResult, error) {
	if !AllowedFile(path) {
		return nil, ErrUnsupportedFile
	}

	u.mu.Lock()
	if u.busy {
		u.mu.Unlock()
		return nil, ErrBusy
	}
	u.busy = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.busy = false
		u.mu.Unlock()
	}()

	return u.client.Upload(ctx, path, progress)
}
