package vaccination

import (
	"errors"
	"testing"
	"time"

	"vaccine-reminder/internal/model"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := model.ParseDate("date", raw)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", raw, err)
	}
	return d
}

func childBornOn(t *testing.T, id uint, dob time.Time) model.Child {
	t.Helper()
	return model.Child{ID: id, UserID: 1, Name: "Emma", DateOfBirth: model.DateColumn(dob), Gender: model.GenderFemale}
}

func TestAgeInMonths_UsesThirtyDayMonths(t *testing.T) {
	dob := date(t, "2024-01-01")
	today := date(t, "2024-07-01")

	if got := AgeInMonths(dob, today); got != 6 {
		t.Fatalf("expected 6 months (182/30), got %d", got)
	}
	if got := AgeInYears(dob, today); got != 0 {
		t.Fatalf("expected 0 years, got %d", got)
	}
}

func TestAgeHelpers_Boundaries(t *testing.T) {
	dob := date(t, "2020-01-01")
	cases := []struct {
		days       int
		wantMonths int
		wantYears  int
	}{
		{0, 0, 0},
		{29, 0, 0},
		{30, 1, 0},
		{364, 12, 0},
		{365, 12, 1},
		{730, 24, 2},
	}
	for _, tc := range cases {
		today := model.AddDays(dob, tc.days)
		if got := AgeInMonths(dob, today); got != tc.wantMonths {
			t.Fatalf("days=%d: expected %d months, got %d", tc.days, tc.wantMonths, got)
		}
		if got := AgeInYears(dob, today); got != tc.wantYears {
			t.Fatalf("days=%d: expected %d years, got %d", tc.days, tc.wantYears, got)
		}
	}
}

func TestAgeInMonths_FloorsNegativeSpans(t *testing.T) {
	dob := date(t, "2024-03-01")
	today := model.AddDays(dob, -1)
	if got := AgeInMonths(dob, today); got != -1 {
		t.Fatalf("expected floor(-1/30) = -1, got %d", got)
	}
}

func TestPlanEligibleDoses_ComputesDatesAndSkipsExisting(t *testing.T) {
	dob := date(t, "2024-01-01")
	child := childBornOn(t, 7, dob)
	catalog := []model.Vaccine{
		{ID: 1, Name: "Hepatitis B", RecommendedAgeMonths: 0},
		{ID: 2, Name: "DTaP", RecommendedAgeMonths: 2},
		{ID: 3, Name: "MMR", RecommendedAgeMonths: 12},
	}

	planned, err := PlanEligibleDoses(child, catalog, nil)
	if err != nil {
		t.Fatalf("PlanEligibleDoses: %v", err)
	}
	if len(planned) != 3 {
		t.Fatalf("expected 3 doses, got %d", len(planned))
	}
	want := []string{"2024-01-01", "2024-03-01", "2024-12-26"}
	for i, dose := range planned {
		if got := model.FormatDate(dose.Due()); got != want[i] {
			t.Fatalf("dose %d: expected %s, got %s", i, want[i], got)
		}
		if dose.Status != model.StatusScheduled || dose.ReminderSent || dose.ChildID != 7 {
			t.Fatalf("dose %d: unexpected state %+v", i, dose)
		}
	}

	again, err := PlanEligibleDoses(child, catalog, planned)
	if err != nil {
		t.Fatalf("PlanEligibleDoses (second run): %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new doses on second run, got %d", len(again))
	}
}

func TestPlanEligibleDoses_DuplicateCatalogEntriesPlannedOnce(t *testing.T) {
	child := childBornOn(t, 1, date(t, "2024-01-01"))
	catalog := []model.Vaccine{
		{ID: 4, Name: "IPV", RecommendedAgeMonths: 2},
		{ID: 4, Name: "IPV", RecommendedAgeMonths: 2},
	}
	planned, err := PlanEligibleDoses(child, catalog, []model.ScheduledDose{{VaccineID: 9}})
	if err != nil {
		t.Fatalf("PlanEligibleDoses: %v", err)
	}
	if len(planned) != 1 {
		t.Fatalf("expected 1 dose, got %d", len(planned))
	}
}

func TestPlanEligibleDoses_RejectsNegativeAge(t *testing.T) {
	child := childBornOn(t, 1, date(t, "2024-01-01"))
	_, err := PlanEligibleDoses(child, []model.Vaccine{{ID: 1, RecommendedAgeMonths: -1}}, nil)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlanManualDose_RejectsPastDate(t *testing.T) {
	today := date(t, "2024-06-10")
	child := childBornOn(t, 1, date(t, "2024-01-01"))
	vaccine := model.Vaccine{ID: 2}

	if _, err := PlanManualDose(child, vaccine, date(t, "2024-06-09"), today); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	dose, err := PlanManualDose(child, vaccine, today, today)
	if err != nil {
		t.Fatalf("PlanManualDose: %v", err)
	}
	if dose.VaccineID != 2 || dose.Status != model.StatusScheduled {
		t.Fatalf("unexpected dose %+v", dose)
	}
}

func TestRecomputeStatus(t *testing.T) {
	today := date(t, "2024-06-10")
	cases := []struct {
		name   string
		due    string
		status model.DoseStatus
		want   model.DoseStatus
	}{
		{"past scheduled", "2024-06-09", model.StatusScheduled, model.StatusOverdue},
		{"today scheduled", "2024-06-10", model.StatusScheduled, model.StatusScheduled},
		{"future overdue reverts", "2024-06-11", model.StatusOverdue, model.StatusScheduled},
		{"past completed", "2024-01-01", model.StatusCompleted, model.StatusCompleted},
		{"future completed", "2025-01-01", model.StatusCompleted, model.StatusCompleted},
	}
	for _, tc := range cases {
		dose := model.ScheduledDose{ScheduledDate: model.DateColumn(date(t, tc.due)), Status: tc.status}
		if got := RecomputeStatus(dose, today); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestRefresh_ReportsChange(t *testing.T) {
	today := date(t, "2024-06-10")
	dose := model.ScheduledDose{ScheduledDate: model.DateColumn(date(t, "2024-06-01")), Status: model.StatusScheduled}
	if !Refresh(&dose, today) || dose.Status != model.StatusOverdue {
		t.Fatalf("expected overdue transition, got %s", dose.Status)
	}
	if Refresh(&dose, today) {
		t.Fatalf("expected no change on second refresh")
	}
}

func TestDaysUntilDueAndDueSoon(t *testing.T) {
	today := date(t, "2024-06-10")
	cases := []struct {
		due      string
		status   model.DoseStatus
		days     int
		dueSoon  bool
		overdue  bool
		upcoming bool
	}{
		{"2024-06-10", model.StatusScheduled, 0, true, false, true},
		{"2024-06-17", model.StatusScheduled, 7, true, false, true},
		{"2024-06-18", model.StatusScheduled, 8, false, false, true},
		{"2024-06-09", model.StatusScheduled, -1, false, true, false},
		{"2024-06-09", model.StatusCompleted, 0, true, false, false},
	}
	for _, tc := range cases {
		dose := model.ScheduledDose{ScheduledDate: model.DateColumn(date(t, tc.due)), Status: tc.status}
		if got := DaysUntilDue(dose, today); got != tc.days {
			t.Fatalf("%s/%s: expected %d days, got %d", tc.due, tc.status, tc.days, got)
		}
		if got := IsDueSoon(dose, today); got != tc.dueSoon {
			t.Fatalf("%s/%s: expected due soon %t", tc.due, tc.status, tc.dueSoon)
		}
		if got := IsOverdue(dose, today); got != tc.overdue {
			t.Fatalf("%s/%s: expected overdue %t", tc.due, tc.status, tc.overdue)
		}
		if got := IsUpcoming(dose, today); got != tc.upcoming {
			t.Fatalf("%s/%s: expected upcoming %t", tc.due, tc.status, tc.upcoming)
		}
	}
}

func TestPlanReminder_LeadDays(t *testing.T) {
	today := date(t, "2024-06-10")

	dose := model.ScheduledDose{ID: 5, ScheduledDate: model.DateColumn(model.AddDays(today, 10))}
	reminder, ok := PlanReminder(dose, "Emma", "DTaP", DefaultLeadDays, today)
	if !ok {
		t.Fatalf("expected a reminder")
	}
	if got := model.FormatDate(reminder.Date()); got != "2024-06-13" {
		t.Fatalf("expected reminder on today+3, got %s", got)
	}
	if reminder.Sent || reminder.ScheduledDoseID != 5 {
		t.Fatalf("unexpected reminder %+v", reminder)
	}
	if reminder.Message != "Reminder: Emma is due for DTaP on 2024-06-20" {
		t.Fatalf("unexpected message %q", reminder.Message)
	}

	soon := model.ScheduledDose{ID: 6, ScheduledDate: model.DateColumn(model.AddDays(today, 3))}
	if _, ok := PlanReminder(soon, "Emma", "DTaP", DefaultLeadDays, today); ok {
		t.Fatalf("expected no reminder when the reminder date is in the past")
	}

	exact := model.ScheduledDose{ID: 7, ScheduledDate: model.DateColumn(model.AddDays(today, 7))}
	if r, ok := PlanReminder(exact, "Emma", "DTaP", DefaultLeadDays, today); !ok || !r.Date().Equal(today) {
		t.Fatalf("expected reminder dated today, got %v %+v", ok, r)
	}
}

func TestDueReminders_FiltersAndOrders(t *testing.T) {
	today := date(t, "2024-06-10")
	reminders := []model.Reminder{
		{ID: 1, ReminderDate: model.DateColumn(date(t, "2024-06-10"))},
		{ID: 2, ReminderDate: model.DateColumn(date(t, "2024-06-01"))},
		{ID: 3, ReminderDate: model.DateColumn(date(t, "2024-06-05")), Sent: true},
		{ID: 4, ReminderDate: model.DateColumn(date(t, "2024-06-11"))},
	}
	due := DueReminders(reminders, today)
	if len(due) != 2 || due[0].ID != 2 || due[1].ID != 1 {
		t.Fatalf("unexpected due reminders: %+v", due)
	}
}

func TestMarkCompleted(t *testing.T) {
	today := date(t, "2024-06-10")
	for _, prior := range []model.DoseStatus{model.StatusScheduled, model.StatusOverdue, model.StatusCompleted} {
		dose := model.ScheduledDose{ScheduledDate: model.DateColumn(date(t, "2024-06-01")), Status: prior}
		if err := MarkCompleted(&dose, date(t, "2024-06-05"), today); err != nil {
			t.Fatalf("prior=%s: unexpected error %v", prior, err)
		}
		on, ok := dose.CompletedOn()
		if dose.Status != model.StatusCompleted || !ok || model.FormatDate(on) != "2024-06-05" {
			t.Fatalf("prior=%s: unexpected dose %+v", prior, dose)
		}
	}

	dose := model.ScheduledDose{Status: model.StatusScheduled}
	err := MarkCompleted(&dose, model.AddDays(today, 1), today)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if dose.Status != model.StatusScheduled || dose.CompletedDate != nil {
		t.Fatalf("failed completion must not mutate the dose: %+v", dose)
	}

	if err := MarkCompleted(&dose, today, today); err != nil {
		t.Fatalf("MarkCompleted today: %v", err)
	}
	if err := MarkCompleted(&dose, model.AddDays(today, -3), today); err != nil {
		t.Fatalf("MarkCompleted again: %v", err)
	}
	if on, _ := dose.CompletedOn(); !on.Equal(model.AddDays(today, -3)) {
		t.Fatalf("expected last write to win, got %s", model.FormatDate(on))
	}
}

func TestScenario_InfantCatalog(t *testing.T) {
	today := date(t, "2024-06-10")
	dob := model.AddDays(today, -70)
	child := childBornOn(t, 1, dob)
	if age := AgeInMonths(dob, today); age != 2 {
		t.Fatalf("expected age 2 months, got %d", age)
	}

	catalog := []model.Vaccine{
		{ID: 1, Name: "Hepatitis B", RecommendedAgeMonths: 0},
		{ID: 2, Name: "DTaP", RecommendedAgeMonths: 2},
	}
	planned, err := PlanEligibleDoses(child, catalog, nil)
	if err != nil {
		t.Fatalf("PlanEligibleDoses: %v", err)
	}
	if len(planned) != 2 {
		t.Fatalf("expected 2 doses, got %d", len(planned))
	}
	if !planned[0].Due().Equal(dob) || !planned[1].Due().Equal(model.AddDays(dob, 60)) {
		t.Fatalf("unexpected dates %s, %s", model.FormatDate(planned[0].Due()), model.FormatDate(planned[1].Due()))
	}
	for _, dose := range planned {
		if _, ok := PlanReminder(dose, child.Name, "x", DefaultLeadDays, today); ok {
			t.Fatalf("expected no reminder for past dose %s", model.FormatDate(dose.Due()))
		}
	}
}
