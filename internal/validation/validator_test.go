// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type idRequest struct {
	UserID string `validate:"required,robloxid"`
}

func TestValidateStruct_RobloxID(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		wantErr bool
	}{
		{name: "valid short id", userID: "1"},
		{name: "valid long id", userID: "261234567890"},
		{name: "empty", userID: "", wantErr: true},
		{name: "zero", userID: "0", wantErr: true},
		{name: "all zeros", userID: "0000", wantErr: true},
		{name: "negative", userID: "-5", wantErr: true},
		{name: "alphabetic", userID: "builderman", wantErr: true},
		{name: "mixed", userID: "123abc", wantErr: true},
		{name: "decimal", userID: "12.5", wantErr: true},
		{name: "too long", userID: strings.Repeat("9", 20), wantErr: true},
		{name: "injection attempt", userID: "1 OR 1=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&idRequest{UserID: tt.userID})
			if tt.wantErr && verr == nil {
				t.Errorf("ValidateStruct(%q) = nil, want error", tt.userID)
			}
			if !tt.wantErr && verr != nil {
				t.Errorf("ValidateStruct(%q) = %v, want nil", tt.userID, verr)
			}
		})
	}
}

type intIDRequest struct {
	UniverseID int64 `validate:"robloxid"`
}

func TestValidateStruct_RobloxIDNumeric(t *testing.T) {
	if verr := ValidateStruct(&intIDRequest{UniverseID: 189707}); verr != nil {
		t.Errorf("positive int64 id should validate, got %v", verr)
	}
	if verr := ValidateStruct(&intIDRequest{UniverseID: 0}); verr == nil {
		t.Error("zero int64 id should fail validation")
	}
	if verr := ValidateStruct(&intIDRequest{UniverseID: -1}); verr == nil {
		t.Error("negative int64 id should fail validation")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	verr := ValidateStruct(&idRequest{UserID: "not-a-number"})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "INVALID_INPUT" {
		t.Errorf("Code = %q, want INVALID_INPUT", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "UserID") {
		t.Errorf("Message %q should name the failing field", apiErr.Message)
	}
	if apiErr.Details["field"] != "UserID" {
		t.Errorf("Details[field] = %v, want UserID", apiErr.Details["field"])
	}
}

type multiFieldRequest struct {
	UserID string `validate:"required,robloxid"`
	Limit  int    `validate:"min=1,max=100"`
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&multiFieldRequest{UserID: "", Limit: 500})
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "INVALID_INPUT" {
		t.Errorf("Code = %q, want INVALID_INPUT", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d field entries, want 2", len(fields))
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	if verr := ValidateStruct(&multiFieldRequest{UserID: "156", Limit: 25}); verr != nil {
		t.Errorf("valid request should pass, got %v", verr)
	}
}
