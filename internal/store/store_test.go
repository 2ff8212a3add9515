package store

import (
	"testing"
	"time"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := open(t)

	u, err := s.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if u != nil {
		t.Fatalf("expected no cached user, got %+v", u)
	}

	want := &User{UID: "u1", Email: "a@b.co", Username: "An", Phone: "0901"}
	if err := s.SaveUser(want); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, err := s.User()
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got == nil || *got != *want {
		t.Errorf("User = %+v, want %+v", got, want)
	}

	// Saving again replaces, never accumulates.
	want.Username = "Bình"
	if err := s.SaveUser(want); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, _ = s.User()
	if got.Username != "Bình" {
		t.Errorf("Username = %q after resave", got.Username)
	}

	if err := s.ClearUser(); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	got, _ = s.User()
	if got != nil {
		t.Errorf("expected nil after ClearUser, got %+v", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := open(t)

	sess, err := s.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no session, got %+v", sess)
	}

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := s.SaveSession(&Session{IDToken: "id", RefreshToken: "rt", Expiry: expiry}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	sess, err = s.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess.IDToken != "id" || sess.RefreshToken != "rt" {
		t.Errorf("Session = %+v", sess)
	}
	if !sess.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", sess.Expiry, expiry)
	}

	if err := s.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if sess, _ := s.Session(); sess != nil {
		t.Errorf("expected nil after ClearSession, got %+v", sess)
	}
}

func TestToken(t *testing.T) {
	s := open(t)

	tok, err := s.Token()
	if err != nil || tok != "" {
		t.Fatalf("Token = %q, %v; want empty", tok, err)
	}
	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if tok, _ := s.Token(); tok != "abc" {
		t.Errorf("Token = %q, want abc", tok)
	}
	if err := s.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if tok, _ := s.Token(); tok != "" {
		t.Errorf("Token = %q after clear", tok)
	}
}

func TestChatFaceOffByOne(t *testing.T) {
	s := open(t)

	// Unset selection defaults to index 0.
	if i, err := s.ChatFaceIndex(); err != nil || i != 0 {
		t.Fatalf("ChatFaceIndex = %d, %v; want 0", i, err)
	}

	// The stored value is the declared id minus one.
	if err := s.SetChatFace(3); err != nil {
		t.Fatalf("SetChatFace: %v", err)
	}
	if i, _ := s.ChatFaceIndex(); i != 2 {
		t.Errorf("ChatFaceIndex = %d, want 2", i)
	}
	raw, err := s.setting("chat_face_id")
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	if raw != "2" {
		t.Errorf("stored chat_face_id = %q, want \"2\"", raw)
	}
}
