package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Shaped like the customer registration payload.
type registrationPayload struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Tier   string `json:"tier" validate:"required,oneof=Regular Student VIP"`
	Points int    `json:"points" validate:"gte=0"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool, includeTier bool) bool {
			reqMap := make(map[string]interface{})
			if includeName {
				reqMap["name"] = "John Smith"
			}
			if includeEmail {
				reqMap["email"] = "john@email.com"
			}
			if includeTier {
				reqMap["tier"] = "Regular"
			}

			body, _ := json.Marshal(reqMap)
			r := httptest.NewRequest("POST", "/api/customers", bytes.NewReader(body))

			var payload registrationPayload
			err := DecodeAndValidate(r, &payload)

			allPresent := includeName && includeEmail && includeTier
			if allPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TierMustBeKnown(t *testing.T) {
	properties := gopter.NewProperties(nil)

	validTiers := map[string]bool{"Regular": true, "Student": true, "VIP": true}

	properties.Property("only known loyalty tiers pass validation", prop.ForAll(
		func(tier string) bool {
			payload := registrationPayload{
				Name:  "Sarah Johnson",
				Email: "sarah@email.com",
				Tier:  tier,
			}
			err := ValidateRequest(payload)
			if validTiers[tier] {
				return err == nil
			}
			return err != nil
		},
		gen.OneConstOf("Regular", "Student", "VIP", "vip", "Gold", "regular", "", "Premium"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_RejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/customers", bytes.NewReader([]byte("{not json")))

	var payload registrationPayload
	if err := DecodeAndValidate(r, &payload); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestFormatValidationErrors_NamesTheFields(t *testing.T) {
	payload := registrationPayload{
		Name:   "",
		Email:  "not-an-email",
		Tier:   "Gold",
		Points: -5,
	}

	err := ValidateRequest(payload)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %+v", len(formatted), formatted)
	}

	fields := map[string]string{}
	for _, fe := range formatted {
		fields[fe.Field] = fe.Message
	}
	if fields["Name"] != "This field is required" {
		t.Errorf("unexpected message for Name: %q", fields["Name"])
	}
	if fields["Email"] != "Invalid email format" {
		t.Errorf("unexpected message for Email: %q", fields["Email"])
	}
	if fields["Tier"] != "Value must be one of: Regular Student VIP" {
		t.Errorf("unexpected message for Tier: %q", fields["Tier"])
	}
	if fields["Points"] != "Value must be greater than or equal to 0" {
		t.Errorf("unexpected message for Points: %q", fields["Points"])
	}
}
