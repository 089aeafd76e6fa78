package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTableNames(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Fatalf("User table = %q", got)
	}
	if got := (Topic{}).TableName(); got != "topics" {
		t.Fatalf("Topic table = %q", got)
	}
	if got := (Conversation{}).TableName(); got != "conversations" {
		t.Fatalf("Conversation table = %q", got)
	}
	if got := (Message{}).TableName(); got != "messages" {
		t.Fatalf("Message table = %q", got)
	}
	if got := (Idempotency{}).TableName(); got != "idempotency" {
		t.Fatalf("Idempotency table = %q", got)
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("Role(%q).Valid() = false", r)
		}
	}
	for _, r := range []Role{"", "tool", "USER", "function"} {
		if r.Valid() {
			t.Errorf("Role(%q).Valid() = true", r)
		}
	}
}

func TestRole_Persistable(t *testing.T) {
	if RoleSystem.Persistable() {
		t.Fatal("system role must not be persistable")
	}
	if !RoleUser.Persistable() || !RoleAssistant.Persistable() {
		t.Fatal("user/assistant roles must be persistable")
	}
}

func TestUser_JSONHidesPassword(t *testing.T) {
	u := User{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "$2b$10$secret"}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Fatalf("password leaked in JSON: %s", b)
	}
}

func TestMessage_JSONOmitsEmptyResponseID(t *testing.T) {
	m := Message{ID: 1, ConversationID: 2, Role: RoleUser, Content: "hi", CreatedAt: time.Now()}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "response_id") {
		t.Fatalf("empty response_id should be omitted: %s", b)
	}

	m.ResponseID = "resp_123"
	b, _ = json.Marshal(m)
	if !strings.Contains(string(b), `"response_id":"resp_123"`) {
		t.Fatalf("response_id missing: %s", b)
	}
}
