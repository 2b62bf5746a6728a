package auth

import "testing"

func TestServiceTokenRoundTrip(t *testing.T) {
	token, err := GenerateServiceToken("test-secret", "backend")
	if err != nil {
		t.Fatalf("GenerateServiceToken returned error: %v", err)
	}

	subject, err := ValidateServiceToken("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateServiceToken returned error: %v", err)
	}
	if subject != "backend" {
		t.Errorf("subject = %q, want %q", subject, "backend")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateServiceToken("test-secret", "backend")
	if err != nil {
		t.Fatalf("GenerateServiceToken returned error: %v", err)
	}

	if _, err := ValidateServiceToken("other-secret", token); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := ValidateServiceToken("test-secret", "not.a.token"); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	token, err := GenerateServiceToken("test-secret", "")
	if err != nil {
		t.Fatalf("GenerateServiceToken returned error: %v", err)
	}

	if _, err := ValidateServiceToken("test-secret", token); err == nil {
		t.Fatal("expected validation to fail for an empty subject")
	}
}
