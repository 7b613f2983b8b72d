package utils

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders a dollar amount with thousands separators and two
// decimal places, e.g. 1500.5 -> "$1,500.50".
func FormatCurrency(amount float64) string {
	return currencyPrinter.Sprintf("$%v",
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatProgressBar renders a ten-segment bar against the target.
func FormatProgressBar(current, target int) string {
	const barLength = 10
	if target <= 0 {
		return "🚫 No target set"
	}

	filled := current * barLength / target
	if filled > barLength {
		filled = barLength
	}
	pct := float64(current) / float64(target) * 100
	if pct > 100 {
		pct = 100
	}

	bar := strings.Repeat("🟩", filled) + strings.Repeat("⬜", barLength-filled)
	return fmt.Sprintf("%s %.1f%% (%d/%d)", bar, pct, current, target)
}

// FormatProgressSummary renders both quota bars for a progress report.
func FormatProgressSummary(currentMeetups, meetupTarget int, currentSales, salesTarget float64) string {
	var b strings.Builder
	b.WriteString("🤝 Meetups:\n")
	b.WriteString(FormatProgressBar(currentMeetups, meetupTarget))
	b.WriteString("\n\n💰 Sales:\n")
	b.WriteString(FormatProgressBar(int(currentSales), int(salesTarget)))
	b.WriteString(fmt.Sprintf("\nCurrent: %s / Target: %s",
		FormatCurrency(currentSales), FormatCurrency(salesTarget)))
	return b.String()
}

// TierEmoji pairs each status tier with its presentation emoji.
func TierEmoji(tier string) string {
	switch tier {
	case "All targets achieved":
		return "🏆"
	case "Excellent":
		return "⭐"
	case "Good progress":
		return "👍"
	case "Making progress":
		return "📈"
	default:
		return "🚀"
	}
}
