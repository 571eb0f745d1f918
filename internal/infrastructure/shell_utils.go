package infrastructure

import "strings"

// shellSpecial lists characters that force quoting when rendering a
// command line for logs. exec.Command itself never shells out, so this
// is purely cosmetic.
const shellSpecial = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// ShellQuote returns s quoted for safe display on a shell command line.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	// Single-quote the whole token; embedded single quotes close the
	// quote, emit a double-quoted quote, and reopen.
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellQuoteCommand renders an executable and its arguments as a single
// copy-pasteable line for log output.
func ShellQuoteCommand(executable string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(executable))
	for _, arg := range args {
		parts = append(parts, ShellQuote(arg))
	}
	return strings.Join(parts, " ")
}
