package model

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate("date", raw)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", raw, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date_of_birth", " 2024-02-29 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(d) != "2024-02-29" || d.Location() != time.UTC {
		t.Fatalf("unexpected date %v", d)
	}

	for _, raw := range []string{"", "2024-02-30", "29.02.2024", "2024-2-1"} {
		_, err := ParseDate("date_of_birth", raw)
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("ParseDate(%q): expected FormatError, got %v", raw, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseDate(%q): FormatError must match ErrValidation", raw)
		}
		if formatErr.Field != "date_of_birth" {
			t.Fatalf("unexpected field %q", formatErr.Field)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	local := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))
	if got := FormatDate(DateOf(local)); got != "2024-03-01" {
		t.Fatalf("DateOf kept the wrong calendar day: %s", got)
	}
	if got := DaysBetween(mustParse(t, "2024-01-01"), mustParse(t, "2024-03-01")); got != 60 {
		t.Fatalf("DaysBetween = %d, want 60", got)
	}
	if got := DaysBetween(mustParse(t, "2024-03-01"), mustParse(t, "2024-01-01")); got != -60 {
		t.Fatalf("DaysBetween = %d, want -60", got)
	}
	if got := FormatDate(AddDays(mustParse(t, "2024-02-28"), 2)); got != "2024-03-01" {
		t.Fatalf("AddDays = %s", got)
	}
}

func TestNewChild(t *testing.T) {
	today := mustParse(t, "2024-06-01")
	tests := []struct {
		name    string
		child   string
		dob     string
		gender  string
		wantErr bool
	}{
		{"valid", "  Mia ", "2024-01-01", "FEMALE", false},
		{"born today", "Leo", "2024-06-01", "male", false},
		{"short name", "M", "2024-01-01", "female", true},
		{"blank name", "   ", "2024-01-01", "female", true},
		{"future", "Mia", "2024-06-02", "female", true},
		{"gender", "Mia", "2024-01-01", "girl", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			child, err := NewChild(1, tc.child, mustParse(t, tc.dob), tc.gender, today)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChild: %v", err)
			}
			if child.Name != "Mia" && child.Name != "Leo" {
				t.Fatalf("name not trimmed: %q", child.Name)
			}
			if FormatDate(child.BirthDate()) != tc.dob {
				t.Fatalf("birth date = %s, want %s", FormatDate(child.BirthDate()), tc.dob)
			}
		})
	}
}

func TestNewVaccine(t *testing.T) {
	tests := []struct {
		name        string
		vaccine     string
		description string
		age, dose   int
		field       string
	}{
		{"short name", "MM", "Measles, Mumps, Rubella", 12, 1, "name"},
		{"short description", "MMR", "Measles", 12, 1, "description"},
		{"negative age", "MMR", "Measles, Mumps, Rubella", -1, 1, "recommended_age_months"},
		{"zero dose", "MMR", "Measles, Mumps, Rubella", 12, 0, "dose_number"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewVaccine(tc.vaccine, tc.description, tc.age, tc.dose, true)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}

	v, err := NewVaccine(" Hepatitis B ", "Protects against hepatitis B", 0, 1, false)
	if err != nil {
		t.Fatalf("NewVaccine: %v", err)
	}
	if v.Name != "Hepatitis B" || v.IsRequired {
		t.Fatalf("unexpected vaccine: %+v", v)
	}
}

func TestNewReminder(t *testing.T) {
	today := mustParse(t, "2024-06-01")

	if _, err := NewReminder(1, mustParse(t, "2024-05-31"), "Bring the card", today); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected past date rejected, got %v", err)
	}
	if _, err := NewReminder(1, today, " abc  ", today); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected short message rejected, got %v", err)
	}

	r, err := NewReminder(1, today, "  Bring the card ", today)
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	if r.Message != "Bring the card" || r.Sent {
		t.Fatalf("unexpected reminder: %+v", r)
	}
	if !r.IsDue(today) || r.IsDue(mustParse(t, "2024-05-31")) {
		t.Fatalf("IsDue boundary wrong")
	}
	r.Sent = true
	if r.IsDue(today) {
		t.Fatalf("sent reminder must not be due")
	}
}

func TestScheduledDose_SetCompleted(t *testing.T) {
	dose := NewScheduledDose(1, 2, mustParse(t, "2024-03-01"))
	if dose.Status != StatusScheduled || dose.IsCompleted() {
		t.Fatalf("unexpected new dose: %+v", dose)
	}
	if _, ok := dose.CompletedOn(); ok {
		t.Fatalf("new dose has a completion date")
	}
	dose.Status = StatusOverdue
	dose.SetCompleted(mustParse(t, "2024-03-05"))
	on, ok := dose.CompletedOn()
	if !ok || FormatDate(on) != "2024-03-05" || !dose.IsCompleted() {
		t.Fatalf("unexpected completed dose: %+v", dose)
	}
}

func TestUserHelpers(t *testing.T) {
	if _, err := NewUser(0, "Ann", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected telegram id required, got %v", err)
	}
	u, err := NewUser(5, " Ann ", "", "ann")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Language != DefaultLanguage || u.DisplayName() != "Ann" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if (User{Username: "ann"}).DisplayName() != "ann" || (User{}).DisplayName() != "caregiver" {
		t.Fatalf("display name fallbacks wrong")
	}
	if _, err := NormalizeEmail("nope"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if err := ValidateLanguage("fr"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unsupported language, got %v", err)
	}
	if err := ValidateLanguage("en"); err != nil {
		t.Fatalf("ValidateLanguage: %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	err := error(&NotFoundError{Entity: "child", ID: 4})
	if err.Error() != "child 4 not found" || !errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		t.Fatalf("unexpected not found error: %v", err)
	}
	err = &ValidationError{Msg: "bad"}
	if err.Error() != "bad" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
