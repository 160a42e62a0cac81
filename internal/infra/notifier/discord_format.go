package notifier

import (
	"regexp"
	"strings"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/utils/text"
)

const (
	// Discord limits
	maxMessageLength     = 2000
	maxTitleLineLength   = 1900
	maxEmbedTitle        = 256
	maxEmbedDescription  = 2000
	maxEmbedFieldValue   = 1024
	truncationSuffix     = "..."
	statusFooterText     = "RSS Monitor"
	discordTitleMarkup   = "**"
	paragraphSeparator   = "\n\n"
	minSummaryBudget     = len(truncationSuffix) + 1
	defaultStatusMessage = "no entries returned"
)

// Embed colours per severity.
const (
	colorError   = 0xFF0000
	colorWarning = 0xFFA500
	colorInfo    = 0x3498DB
	colorEmpty   = 0x95A5A6
)

var (
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"~", `\~`,
		"`", "\\`",
	)

	trailingParenthetical = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	trailingZone          = regexp.MustCompile(`\s+(?:[+-]\d{2}:?\d{2}|Z|GMT|UTC|UT|CST|CDT|EST|EDT|PST|PDT|MST|MDT|BST|CET|CEST|JST|KST|HKT|SGT|IST)$`)
)

// escapeMarkdown neutralizes Discord markdown control characters in user content.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// cleanDate drops trailing parentheticals and timezone tokens from a raw feed
// date so it reads better in chat: "Mon, 01 Jan 2024 10:00:00 +0000 (UTC)"
// becomes "Mon, 01 Jan 2024 10:00:00".
func cleanDate(published string) string {
	d := strings.TrimSpace(published)
	d = trailingParenthetical.ReplaceAllString(d, "")
	d = trailingZone.ReplaceAllString(d, "")
	return strings.TrimSpace(d)
}

// FormatDiscordText renders an article as a plain-text Discord message of at
// most 2000 runes: bold title, summary, link, date and source lines.
func FormatDiscordText(article *entity.Article, sourceName string) string {
	title := escapeMarkdown(article.Title)
	titleBudget := maxTitleLineLength - 2*len(discordTitleMarkup)
	titleLine := discordTitleMarkup + text.TruncateWithSuffix(title, titleBudget, truncationSuffix) + discordTitleMarkup

	var tail []string
	if article.Link != "" {
		tail = append(tail, "🔗 "+article.Link)
	}
	if date := cleanDate(article.Published); date != "" {
		tail = append(tail, "📅 "+date)
	}
	if sourceName != "" {
		tail = append(tail, "📰 Source: "+escapeMarkdown(sourceName))
	}
	tailBlock := ""
	if len(tail) > 0 {
		tailBlock = paragraphSeparator + strings.Join(tail, "\n")
	}

	var b strings.Builder
	b.WriteString(titleLine)

	if summary := escapeMarkdown(article.Summary); summary != "" {
		budget := maxMessageLength - text.CountRunes(titleLine) - text.CountRunes(tailBlock) - len(paragraphSeparator)
		if budget >= minSummaryBudget {
			b.WriteString(paragraphSeparator)
			b.WriteString(text.TruncateWithSuffix(summary, budget, truncationSuffix))
		}
	}
	b.WriteString(tailBlock)

	return text.TruncateWithSuffix(b.String(), maxMessageLength, truncationSuffix)
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is a name/value pair shown inside an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// severityColor maps a severity to its embed colour; unknown severities are
// shown as errors.
func severityColor(s entity.Severity) int {
	switch s {
	case entity.SeverityWarning:
		return colorWarning
	case entity.SeverityInfo:
		return colorInfo
	case entity.SeverityEmpty:
		return colorEmpty
	default:
		return colorError
	}
}

func severityIcon(s entity.Severity) string {
	switch s {
	case entity.SeverityWarning:
		return "⚠️"
	case entity.SeverityInfo:
		return "ℹ️"
	case entity.SeverityEmpty:
		return "📭"
	default:
		return "❌"
	}
}

func severityLabel(s entity.Severity) string {
	switch s {
	case entity.SeverityWarning:
		return "Warning"
	case entity.SeverityInfo:
		return "Info"
	case entity.SeverityEmpty:
		return "Empty feed"
	default:
		return "Error"
	}
}

// BuildStatusEmbed renders a status report as a Discord embed, clamping every
// part to Discord's limits.
func BuildStatusEmbed(report entity.StatusReport, now time.Time) DiscordEmbed {
	name := report.SourceName
	if name == "" {
		name = report.SourceURL
	}
	message := report.Message
	if message == "" {
		message = defaultStatusMessage
	}

	title := severityIcon(report.Severity) + " RSS source issue: " + name

	var desc strings.Builder
	desc.WriteString("**Status**: " + severityLabel(report.Severity))
	desc.WriteString("\n**Error**: " + message)
	desc.WriteString("\n**Feed**: " + report.SourceURL)
	if report.Hint != "" {
		desc.WriteString("\n**Hint**: " + report.Hint)
	}

	return DiscordEmbed{
		Title:       text.TruncateWithSuffix(title, maxEmbedTitle, truncationSuffix),
		Description: text.TruncateWithSuffix(desc.String(), maxEmbedDescription, truncationSuffix),
		Color:       severityColor(report.Severity),
		Fields: []DiscordEmbedField{
			{Name: "Source", Value: text.TruncateWithSuffix(name, maxEmbedFieldValue, truncationSuffix), Inline: true},
			{Name: "Severity", Value: string(report.Severity), Inline: true},
		},
		Footer:    DiscordEmbedFooter{Text: statusFooterText},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
