package bot

import (
	"errors"
	"fmt"
	"strings"

	"vaccine-reminder/internal/model"
	"vaccine-reminder/internal/service"
)

// userMessage maps an error onto chat text. known is false for errors
// that are not the user's fault.
func userMessage(err error) (text string, known bool) {
	var formatErr *model.FormatError
	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	switch {
	case errors.As(err, &formatErr):
		return fmt.Sprintf("⚠️ %s", escape(formatErr.Error())), true
	case errors.As(err, &validationErr):
		return fmt.Sprintf("⚠️ %s", escape(validationErr.Error())), true
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("🔎 No %s #%d among your records.", notFoundErr.Entity, notFoundErr.ID), true
	case errors.Is(err, model.ErrNotFound):
		return "🔎 Not found.", true
	default:
		return "Something went wrong. Please try again later.", false
	}
}

func formatProfile(p service.ChildProfile) string {
	return fmt.Sprintf("<code>#%d</code> <b>%s</b> · %s\n   born %s · %s\n",
		p.Child.ID,
		escape(p.Child.Name),
		p.Child.Gender,
		model.FormatDate(p.Child.BirthDate()),
		formatAge(p.AgeMonths, p.AgeYears))
}

func formatOverview(o service.HealthOverview) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", escape(o.Profile.Child.Name)))
	sb.WriteString(fmt.Sprintf("• <b>Age:</b> %s\n", formatAge(o.Profile.AgeMonths, o.Profile.AgeYears)))
	sb.WriteString(fmt.Sprintf("• <b>Gender:</b> %s\n", o.Profile.Child.Gender))
	sb.WriteString(fmt.Sprintf("• <b>Completed:</b> %d of %d\n", o.Completed, o.Total))
	sb.WriteString(fmt.Sprintf("• <b>Overdue:</b> %d\n", o.Overdue))
	sb.WriteString(fmt.Sprintf("• <b>Upcoming:</b> %d\n", o.Upcoming))
	if o.Next != nil {
		sb.WriteString(fmt.Sprintf("• <b>Next:</b> %s on %s\n", escape(o.Next.VaccineName()), model.FormatDate(o.Next.Dose.Due())))
	}
	return strings.TrimSpace(sb.String())
}

func formatAge(months, years int) string {
	switch {
	case years >= 2:
		return fmt.Sprintf("%d years", years)
	case months == 0:
		return "under 1 month"
	default:
		return formatMonths(months)
	}
}

func formatMonths(months int) string {
	switch months {
	case 0:
		return "birth"
	case 1:
		return "1 month"
	default:
		return fmt.Sprintf("%d months", months)
	}
}

func shortText(text string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
