package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"vaccine-reminder/internal/model"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		contains  string
		wantKnown bool
	}{
		{"format", &model.FormatError{Field: "date_of_birth", Value: "31/01/2024"}, "YYYY-MM-DD", true},
		{"validation", fmt.Errorf("create child: %w", &model.ValidationError{Field: "name", Msg: "must be at least 2 characters long"}), "name: must be", true},
		{"not found", fmt.Errorf("load: %w", &model.NotFoundError{Entity: "dose", ID: 7}), "No dose #7", true},
		{"escaped", &model.ValidationError{Field: "message", Msg: "<b>"}, "&lt;b&gt;", true},
		{"internal", errors.New("disk I/O error"), "Something went wrong", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, known := userMessage(tc.err)
			if known != tc.wantKnown {
				t.Fatalf("known = %t, want %t", known, tc.wantKnown)
			}
			if !strings.Contains(text, tc.contains) {
				t.Fatalf("%q does not contain %q", text, tc.contains)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"12", 12, false},
		{" #7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := parseID(tc.raw)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("parseID(%q) = %d, %v", tc.raw, got, err)
		}
	}
}

func TestSplitCallback(t *testing.T) {
	prefix, id, ok := splitCallback("deldose:42")
	if !ok || prefix != cbDeleteDosePrefix || id != "42" {
		t.Fatalf("unexpected split: %q %q %t", prefix, id, ok)
	}
	if _, _, ok := splitCallback("unknown:1"); ok {
		t.Fatalf("unknown prefix accepted")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		months, years int
		want          string
	}{
		{0, 0, "under 1 month"},
		{1, 0, "1 month"},
		{14, 1, "14 months"},
		{30, 2, "2 years"},
	}
	for _, tc := range tests {
		if got := formatAge(tc.months, tc.years); got != tc.want {
			t.Fatalf("formatAge(%d, %d) = %q, want %q", tc.months, tc.years, got, tc.want)
		}
	}
}

func TestShortText(t *testing.T) {
	if got := shortText("Hepatitis B", 20); got != "Hepatitis B" {
		t.Fatalf("short text changed: %q", got)
	}
	if got := shortText("Meningococcal conjugate", 10); got != "Meningoco…" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestInputPredicates(t *testing.T) {
	if !isConfirmInput(btnConfirm) || !isConfirmInput(" Yes ") {
		t.Fatalf("confirm input not recognised")
	}
	if !isCancelInput(btnCancel) || isCancelInput(btnConfirm) {
		t.Fatalf("cancel input misclassified")
	}
	if !isSkipInput("-") || !isSkipInput(btnSkip) {
		t.Fatalf("skip input not recognised")
	}
	if !isTodayInput(btnToday) || isTodayInput("2024-01-01") {
		t.Fatalf("today input misclassified")
	}
	if !isCancelDialogInput(btnCancelDialog) {
		t.Fatalf("cancel dialog input not recognised")
	}
}
