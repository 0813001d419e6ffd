package safety

import (
	"regexp"
	"strings"

	"github.com/randalmurphal/hooksmith/internal/hook"
)

// alwaysAvailable lists tools the host environment guarantees: shell
// builtins, git, and the POSIX utilities present on every supported
// platform. Anything else invoked by a hook command needs an existence
// guard so the hook degrades to a no-op where the tool is absent.
var alwaysAvailable = map[string]bool{
	// Shell builtins and keywords.
	"cd": true, "echo": true, "printf": true, "test": true, "[": true, "[[": true,
	"exit": true, "true": true, "false": true, "set": true, "unset": true,
	"export": true, "read": true, "command": true, "type": true, "which": true,
	"local": true, "return": true, "shift": true, "trap": true, "wait": true,
	"source": true, ".": true, "eval": true, "exec": true, ":": true,

	// Always-present binaries.
	"git": true, "sh": true, "bash": true,

	// POSIX utilities the host ships everywhere.
	"cat": true, "grep": true, "head": true, "tail": true, "cut": true,
	"tr": true, "wc": true, "sort": true, "uniq": true, "date": true,
	"mkdir": true, "tee": true, "env": true, "sleep": true, "basename": true,
	"dirname": true, "xargs": true, "find": true, "touch": true, "rm": true,
	"cp": true, "mv": true, "ls": true, "ln": true, "chmod": true, "sed": true,
	"awk": true, "stat": true, "kill": true,
}

// controlWords are skipped when locating the command word of a segment.
var controlWords = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "fi": true,
	"for": true, "while": true, "until": true, "do": true, "done": true,
	"case": true, "esac": true, "in": true, "!": true, "time": true,
	"{": true, "}": true,
}

// segment is one pipeline stage of a command, with its byte offset in
// the original string so guard ordering can be checked.
type segment struct {
	text   string
	offset int
}

// splitSegments splits a command on ; | & and newlines, honoring single
// and double quotes. This is intentionally a rough lexer: the goal is
// pattern analysis, not shell emulation.
func splitSegments(command string) []segment {
	var segs []segment
	start := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(command); i++ {
		c := command[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case (c == ';' || c == '|' || c == '&' || c == '\n') && !inSingle && !inDouble:
			if c == '&' && i > 0 && command[i-1] == '>' {
				// >& is a redirect, not a separator.
				continue
			}
			if text := command[start:i]; strings.TrimSpace(text) != "" {
				segs = append(segs, segment{text: text, offset: start})
			}
			start = i + 1
		}
	}
	if text := command[start:]; strings.TrimSpace(text) != "" {
		segs = append(segs, segment{text: text, offset: start})
	}
	return segs
}

// envAssignPattern matches leading VAR=value words.
var envAssignPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// commandWord returns the tool a segment invokes, or "" when the
// segment has no plain command word (pure assignments, expansions,
// redirections, explicit paths).
func commandWord(seg string) string {
	for _, tok := range strings.Fields(seg) {
		if controlWords[tok] || envAssignPattern.MatchString(tok) {
			continue
		}
		if strings.HasPrefix(tok, "$") || strings.HasPrefix(tok, "\"") || strings.HasPrefix(tok, "'") {
			return ""
		}
		if strings.HasPrefix(tok, ">") || strings.HasPrefix(tok, "<") || strings.HasPrefix(tok, "2>") {
			continue
		}
		if strings.Contains(tok, "/") {
			// Explicit paths are covered by the path-safety rule.
			return ""
		}
		return tok
	}
	return ""
}

// checkToolGuards verifies that every invocation of a non-guaranteed
// tool is preceded by an existence probe for that tool.
func checkToolGuards(res *Result, action int, command string) {
	flagged := map[string]bool{}
	for _, seg := range splitSegments(command) {
		tool := commandWord(seg.text)
		if tool == "" || alwaysAvailable[tool] || flagged[tool] {
			continue
		}
		guard := regexp.MustCompile(`(?:command\s+-v|which|type)\s+` + regexp.QuoteMeta(tool) + `\b`)
		loc := guard.FindStringIndex(command)
		if loc == nil || loc[0] >= seg.offset {
			flagged[tool] = true
			res.failf(RuleToolGuard,
				"action %d invokes %q without a prior existence check; guard it with 'command -v %s >/dev/null 2>&1 &&' so the hook is a no-op when the tool is absent",
				action, tool, tool)
		}
	}
}

// successSuffixPattern matches command endings that guarantee a zero
// exit status regardless of internal failures.
var successSuffixPattern = regexp.MustCompile(`(\|\|\s*(true|:|exit\s+0)|;\s*exit\s+0)\s*$`)

// checkSilentFailure requires non-blocking hooks to swallow their own
// failures: a nonzero exit from them must never abort the host's
// workflow. Blocking event types (pre-tool, pre-push, prompt submit)
// are exempt since a nonzero exit is their whole point.
func checkSilentFailure(res *Result, spec hook.EventSpec, action int, command string) {
	if spec.MayBlock {
		return
	}
	if !successSuffixPattern.MatchString(strings.TrimSpace(command)) {
		res.failf(RuleSilentFailure,
			"action %d on %s must end with '|| true' (or an equivalent success guarantee); a failing hook must not abort the host workflow",
			action, spec.Type)
	}
}

// traversalPattern matches parent-directory traversal in path text.
var traversalPattern = regexp.MustCompile(`(^|[\s"'=/])\.\.(/|\s|$)`)

// expansionPathPattern matches a variable expansion used as the head of
// a path, e.g. $HOME/.claude or ${DIR}/out.
var expansionPathPattern = regexp.MustCompile(`\$\{?[A-Za-z_][A-Za-z0-9_]*\}?/`)

// checkPathSafety rejects path traversal and unquoted expansion-rooted
// paths embedded in a command.
func checkPathSafety(res *Result, action int, command string) {
	if traversalPattern.MatchString(command) {
		res.failf(RulePathSafety, "action %d contains a parent-directory traversal segment", action)
	}

	for _, loc := range expansionPathPattern.FindAllStringIndex(command, -1) {
		if !insideDoubleQuotes(command, loc[0]) {
			res.failf(RulePathSafety,
				"action %d uses the unquoted path %q; quote expansions used as paths",
				action, command[loc[0]:loc[1]])
		}
	}
}

// insideDoubleQuotes reports whether idx falls inside a double-quoted
// region of s, ignoring double quotes inside single-quoted regions.
func insideDoubleQuotes(s string, idx int) bool {
	inSingle, inDouble := false, false
	for i := 0; i < idx && i < len(s); i++ {
		switch s[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		}
	}
	return inDouble
}
