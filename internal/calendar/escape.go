package calendar

import (
	"strings"
	"time"
)

const compactUTC = "20060102T150405Z"

// FormatUTC renders t in the compact UTC form YYYYMMDDTHHMMSSZ.
func FormatUTC(t time.Time) string { return t.UTC().Format(compactUTC) }

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\r", `\n`,
	"\n", `\n`,
)

// EscapeText escapes a TEXT property value.
func EscapeText(s string) string { return textEscaper.Replace(s) }

var paramEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
)

// EscapeParam escapes a parameter value such as CN. Line breaks are folded to
// a single space instead of \n so the value stays on its content line.
func EscapeParam(s string) string { return paramEscaper.Replace(s) }
