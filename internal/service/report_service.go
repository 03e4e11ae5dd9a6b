package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"vaccine-reminder/internal/model"
)

// ReportService builds human-readable summaries for periodic notifications.
type ReportService struct {
	schedule *ScheduleService
	clock    Clock
}

func NewReportService(schedule *ScheduleService, clock Clock) *ReportService {
	return &ReportService{schedule: schedule, clock: clock}
}

// DailySummary renders the user's overdue and due-soon doses as Telegram HTML.
// ok is false when there is nothing worth sending.
func (s *ReportService) DailySummary(ctx context.Context, user model.User) (text string, ok bool, err error) {
	overdue, err := s.schedule.Overdue(ctx, user.ID)
	if err != nil {
		return "", false, err
	}
	dueSoon, err := s.schedule.DueSoon(ctx, user.ID)
	if err != nil {
		return "", false, err
	}
	if len(overdue) == 0 && len(dueSoon) == 0 {
		return "", false, nil
	}

	var builder strings.Builder
	builder.WriteString("💉 <b>Vaccination summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", model.FormatDate(s.clock.Today())))

	builder.WriteString("⚠️ <b>Overdue</b>\n")
	if len(overdue) == 0 {
		builder.WriteString("— nothing overdue\n")
	} else {
		for _, v := range overdue {
			builder.WriteString(FormatDose(v))
		}
	}

	builder.WriteString("\n⏳ <b>Due soon</b>\n")
	if len(dueSoon) == 0 {
		builder.WriteString("— nothing due in the next days\n")
	} else {
		for _, v := range dueSoon {
			builder.WriteString(FormatDose(v))
		}
	}

	return strings.TrimSpace(builder.String()), true, nil
}

// FormatDose renders one dose line in Telegram HTML.
func FormatDose(v DoseView) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case v.Dose.Status == model.StatusCompleted:
		icon = "✅"
	case v.Dose.Status == model.StatusOverdue:
		icon = "⚠️"
	case v.DueSoon:
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s <code>#%d</code> %s · %s",
		icon, v.Dose.ID,
		html.EscapeString(strings.TrimSpace(v.VaccineName())),
		html.EscapeString(strings.TrimSpace(v.Child.Name))))

	due := model.FormatDate(v.Dose.Due())
	switch {
	case v.Dose.Status == model.StatusCompleted:
		if on, ok := v.Dose.CompletedOn(); ok {
			sb.WriteString(fmt.Sprintf("\n   given on %s", model.FormatDate(on)))
		}
	case v.DaysUntilDue < 0:
		sb.WriteString(fmt.Sprintf("\n   ⏰ was due %s, <b>%d days overdue</b>", due, -v.DaysUntilDue))
	case v.DaysUntilDue == 0:
		sb.WriteString(fmt.Sprintf("\n   ⏰ due <b>today</b> (%s)", due))
	default:
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, in %d days", due, v.DaysUntilDue))
	}

	sb.WriteByte('\n')
	return sb.String()
}
