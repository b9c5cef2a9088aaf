// Package report renders normalized organization records as Telegram-flavored
// Markdown text.
package report

import (
	"fmt"
	"strings"

	"innbot/internal/registry/domain/organization"
)

// User-facing messages that are not reports.
const (
	NotFoundMessage = "❌ Организация не найдена. Проверьте правильность ИНН/ОГРН."

	InvalidInputMessage = "❌ Пожалуйста, введите корректный ИНН (10 или 12 цифр) или ОГРН (13 цифр).\n\n" + examples

	GreetingMessage = "👋 Привет! Я помогу найти информацию об организации по ИНН или ОГРН.\n\n" +
		"Просто отправь мне ИНН (10 или 12 цифр) или ОГРН (13 цифр).\n\n" + examples

	MetroHeader = "🚇 *Ближайшее метро:*"

	examples = "Примеры:\n- ИНН: 7710137066\n- ОГРН: 1027700132195"
)

// LookupFailureMessage is shown when the registry could not be queried.
func LookupFailureMessage(reason string) string {
	return "⚠️ Ошибка при запросе к API: " + reason
}

// markdownEscaper escapes the characters that legacy Telegram Markdown treats
// as entity delimiters and flattens line breaks so each block stays on one
// line. Registry values are escaped; labels are not.
var markdownEscaper = strings.NewReplacer(
	"\r", "",
	"\n", " ",
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

func esc(s string) string {
	return markdownEscaper.Replace(s)
}

// Format renders an outcome. It is total: every record, including one made
// only of defaults, renders without error.
func Format(outcome organization.Outcome) string {
	if !outcome.Found {
		return NotFoundMessage
	}
	return strings.Join(Lines(outcome.Record), "\n")
}

// Lines returns the report blocks of a record in display order. The metro
// block contributes its header and one line per station.
func Lines(r organization.Record) []string {
	lines := []string{
		fmt.Sprintf("🏢 *%s*", esc(r.ShortName)),
		fmt.Sprintf("📋 *ИНН:* %s", esc(r.TaxID)),
		fmt.Sprintf("📄 *ОГРН:* %s", esc(r.RegistrationID)),
		fmt.Sprintf("📍 *Адрес:* %s", esc(r.Address)),
		fmt.Sprintf("🔢 *КПП:* %s", esc(r.KPP)),
	}

	if r.Capital != nil {
		amount := r.Capital.Amount
		if r.Capital.Unit != "" {
			amount += " " + r.Capital.Unit
		}
		lines = append(lines, fmt.Sprintf("💰 *Уставной капитал:* %s", esc(amount)))
	}

	if r.Management != nil {
		lines = append(lines, fmt.Sprintf("👔 *Руководитель:* %s (%s)",
			esc(r.Management.PersonName), esc(r.Management.Title)))
	}

	if main, ok := r.MainActivity(); ok {
		lines = append(lines, fmt.Sprintf("🏭 *Основной вид деятельности:* %s", esc(main.Name)))
	}

	if len(r.MetroStations) > 0 {
		lines = append(lines, MetroHeader)
		for _, s := range r.MetroStations {
			lines = append(lines, fmt.Sprintf("- %s (%s, %s км)",
				esc(s.Name), esc(s.Line), esc(s.DistanceKM)))
		}
	}

	return lines
}
