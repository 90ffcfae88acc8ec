package assist

import (
	"regexp"
	"strings"

	"github.com/temirov/shellhint/internal/cmdspec"
)

const (
	paragraphBreak   = "\n\n"
	usageHeading     = "Usage:"
	usageIndent      = "     "
	codeBlockIndent  = "    "
	headingMarker    = "#"
	inlineCodeMarker = "`"
	optionNameJoiner = ", "
)

var (
	tldrPlaceholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
	tldrCodeLinePattern    = regexp.MustCompile("^`(.*)`$")
)

// FormatTldr renders a tldr page: placeholders lose their braces, headings are
// dropped and lone example lines become indented code blocks.
func FormatTldr(text string) string {
	if len(text) == 0 {
		return ""
	}
	withoutPlaceholders := tldrPlaceholderPattern.ReplaceAllString(text, "$1")
	var lines []string
	for _, line := range strings.Split(withoutPlaceholders, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), headingMarker) {
			continue
		}
		lines = append(lines, tldrCodeLinePattern.ReplaceAllString(line, codeBlockIndent+"`$1`"+paragraphBreak))
	}
	return paragraphBreak + strings.TrimLeft(strings.Join(lines, "\n"), " \t\r\n")
}

// FormatUsage renders usage text as an indented block under a heading.
func FormatUsage(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	for lineIndex, line := range lines {
		lines[lineIndex] = usageIndent + line
	}
	return paragraphBreak + usageHeading + paragraphBreak + strings.Join(lines, "\n") + paragraphBreak + "\n"
}

// FormatDescription renders a description as its own paragraph.
func FormatDescription(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return ""
	}
	return paragraphBreak + trimmed
}

// FormatOptions renders each option as its quoted spellings, its argument
// placeholder and its description. Multiple options are separated by a blank line.
func FormatOptions(options []cmdspec.Option) string {
	messages := make([]string, 0, len(options))
	for _, option := range options {
		quotedNames := make([]string, 0, len(option.Names))
		for _, name := range option.Names {
			quotedNames = append(quotedNames, inlineCode(name))
		}
		message := strings.Join(quotedNames, optionNameJoiner)
		if option.TakesArgument() {
			message += " " + inlineCode(option.Argument)
		}
		message += paragraphBreak + strings.TrimSpace(option.Description)
		messages = append(messages, message)
	}
	return strings.Join(messages, paragraphBreak)
}

func inlineCode(text string) string {
	return inlineCodeMarker + text + inlineCodeMarker
}
