package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrProfileNotFound is returned when no profile record exists for a
// uid. Callers fall back to the basic provider identity.
var ErrProfileNotFound = errors.New("auth: profile not found")

const defaultFirestoreURL = "https://firestore.googleapis.com"

// ProfileStore reads and writes the secondary per-user profile record
// (username, phone) in the `users` collection, keyed by account uid.
type ProfileStore struct {
	projectID string
	baseURL   string
	client    *http.Client
}

// NewProfileStore creates a profile store for the given project.
func NewProfileStore(projectID string) *ProfileStore {
	return NewProfileStoreAt(projectID, defaultFirestoreURL)
}

// NewProfileStoreAt creates a profile store against an explicit endpoint.
func NewProfileStoreAt(projectID, baseURL string) *ProfileStore {
	return &ProfileStore{
		projectID: projectID,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Profile is the secondary profile record.
type Profile struct {
	Username  string
	Phone     string
	Email     string
	CreatedAt time.Time
}

type firestoreValue struct {
	StringValue    string `json:"stringValue,omitempty"`
	TimestampValue string `json:"timestampValue,omitempty"`
}

type firestoreDocument struct {
	Fields map[string]firestoreValue `json:"fields"`
}

func (ps *ProfileStore) documentURL(uid string) string {
	return fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents/users/%s",
		ps.baseURL, url.PathEscape(ps.projectID), url.PathEscape(uid))
}

// Get fetches the profile record for uid, authenticated with the
// session's ID token.
func (ps *ProfileStore) Get(ctx context.Context, uid, idToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ps.documentURL(uid), nil)
	if err != nil {
		return nil, fmt.Errorf("creating profile request: %w", err)
	}
	if idToken != "" {
		req.Header.Set("Authorization", "Bearer "+idToken)
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileNotFound
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading profile response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reading profile: status %d: %s", resp.StatusCode, body)
	}

	var doc firestoreDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	p := &Profile{
		Username: doc.Fields["username"].StringValue,
		Phone:    doc.Fields["phone"].StringValue,
		Email:    doc.Fields["email"].StringValue,
	}
	if ts := doc.Fields["createdAt"].TimestampValue; ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.CreatedAt = t
		}
	}
	return p, nil
}

// Set writes the profile record for uid. Registration calls this right
// after account creation; a failure here leaves the account without a
// profile record and is not rolled back.
func (ps *ProfileStore) Set(ctx context.Context, uid, idToken string, p *Profile) error {
	doc := firestoreDocument{Fields: map[string]firestoreValue{
		"username":  {StringValue: p.Username},
		"phone":     {StringValue: p.Phone},
		"email":     {StringValue: p.Email},
		"createdAt": {TimestampValue: p.CreatedAt.UTC().Format(time.RFC3339)},
	}}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, ps.documentURL(uid), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating profile write: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idToken != "" {
		req.Header.Set("Authorization", "Bearer "+idToken)
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("writing profile: status %d", resp.StatusCode)
	}
	return nil
}
