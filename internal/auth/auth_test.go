package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/twokvolts/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewManager("secret", time.Hour)
	principal := model.Principal{ConsumerID: uuid.New(), Role: model.RoleOperator}

	token, err := manager.Issue(principal, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parsed, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ConsumerID != principal.ConsumerID {
		t.Fatalf("expected %s, got %s", principal.ConsumerID, parsed.ConsumerID)
	}
	if parsed.Role != model.RoleOperator {
		t.Fatalf("expected operator role, got %s", parsed.Role)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := NewManager("secret", time.Hour)
	principal := model.Principal{ConsumerID: uuid.New(), Role: model.RoleConsumer}

	token, err := manager.Issue(principal, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue(model.Principal{ConsumerID: uuid.New(), Role: model.RoleConsumer}, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseDefaultsUnknownRoleToConsumer(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	token, err := manager.Issue(model.Principal{ConsumerID: uuid.New(), Role: model.Role("superuser")}, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parsed, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Role != model.RoleConsumer {
		t.Fatalf("expected consumer fallback, got %s", parsed.Role)
	}
}
