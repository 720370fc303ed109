package session

import (
	"strings"
	"testing"
)

func TestNewMessage_Valid(t *testing.T) {
	msg, err := NewMessage(RoleUser, "  hello  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role() != RoleUser {
		t.Errorf("Role() = %q", msg.Role())
	}
	if msg.Content() != "hello" {
		t.Errorf("Content() = %q, want trimmed", msg.Content())
	}
	if msg.Timestamp().IsZero() {
		t.Error("Timestamp() should be set")
	}
}

func TestNewMessage_UnknownRole(t *testing.T) {
	_, err := NewMessage(Role("system"), "hello")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	if !strings.Contains(err.Error(), "role") {
		t.Errorf("error = %q", err)
	}
}

func TestNewMessage_EmptyContent(t *testing.T) {
	for _, content := range []string{"", "   \n "} {
		if _, err := NewMessage(RoleAssistant, content); err == nil {
			t.Errorf("expected error for content %q", content)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("expected known roles to be valid")
	}
	if Role("model").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}
