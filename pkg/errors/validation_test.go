package errors

import (
	"strings"
	"testing"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "bom.json", "bom.json", false},
		{"unix path", "/tmp/uploads/bom.json", "bom.json", false},
		{"windows path", `C:\Users\me\sbom.spdx.json`, "sbom.spdx.json", false},
		{"empty", "", "", true},
		{"control char", "bom\x01.json", "", true},
		{"too long", strings.Repeat("a", 300), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSeverities(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"CRITICAL", false},
		{"critical,high", false},
		{"HIGH, low ,UNKNOWN", false},
		{"SEVERE", true},
	}
	for _, tt := range tests {
		if err := ValidateSeverities(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSeverities(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateRiskLevels(t *testing.T) {
	if err := ValidateRiskLevels("low,medium,HIGH"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateRiskLevels("extreme")
	if !Is(err, ErrCodeInvalidQuery) {
		t.Errorf("want INVALID_QUERY, got %v", err)
	}
}

func TestValidateSort(t *testing.T) {
	tests := []struct {
		field, order string
		wantErr      bool
	}{
		{"", "", false},
		{"name", "asc", false},
		{"risk", "desc", false},
		{"lastUpdate", "", false},
		{"stars", "", true},
		{"name", "up", true},
	}
	for _, tt := range tests {
		if err := ValidateSort(tt.field, tt.order); (err != nil) != tt.wantErr {
			t.Errorf("ValidateSort(%q, %q) error = %v, wantErr %v", tt.field, tt.order, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://github.com/expressjs/express"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "git@github.com:a/b.git", "ftp://example.com"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("ValidateURL(%q) should fail", bad)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("SplitList() = %v", got)
	}
	if SplitList("") != nil {
		t.Error("SplitList(\"\") should be nil")
	}
}
