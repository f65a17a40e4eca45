package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
)

type testPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=0"`
}

func TestDecodeAndValidateAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name":"Ada","email":"ada@example.com","age":36}`))

	var payload testPayload
	if err := DecodeAndValidate(req, &payload); err != nil {
		t.Fatalf("Expected valid payload to pass, got %v", err)
	}
	if payload.Name != "Ada" {
		t.Errorf("Decoded name mismatch: %q", payload.Name)
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name":`))

	var payload testPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("Expected malformed JSON to fail")
	}
}

func TestFormatValidationErrorsMapsFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"email":"not-an-email","age":-1}`))

	var payload testPayload
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	fields := FormatValidationErrors(err)

	if fields["Name"] != "This field is required" {
		t.Errorf("Name: expected required message, got %q", fields["Name"])
	}
	if fields["Email"] != "Invalid email format" {
		t.Errorf("Email: expected email message, got %q", fields["Email"])
	}
	if _, ok := fields["Age"]; !ok {
		t.Error("Expected a message for Age")
	}
}

func TestFormatValidationErrorsNonValidatorError(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`[1,2,3]`))

	var payload testPayload
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("Expected decode to fail")
	}

	if fields := FormatValidationErrors(err); len(fields) != 0 {
		t.Errorf("Expected no field errors for a decode failure, got %v", fields)
	}
}
