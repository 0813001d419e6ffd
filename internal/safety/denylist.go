package safety

import "regexp"

// denyRules is the fixed denylist of destructive shell patterns. A
// match is a hard failure with no override: the installer never asks
// for confirmation on these.
var denyRules = []struct {
	desc string
	re   *regexp.Regexp
}{
	// Recursive force deletes in their common spellings.
	{"recursive force delete", regexp.MustCompile(`\brm\s+(?:-[a-zA-Z]+\s+)*-[a-zA-Z]*(?:rf|fr)[a-zA-Z]*\b`)},
	{"recursive force delete", regexp.MustCompile(`\brm\s+(?:-[a-zA-Z]+\s+)*-[a-zA-Z]*r[a-zA-Z]*\s+(?:-[a-zA-Z]+\s+)*-[a-zA-Z]*f\b`)},
	{"recursive force delete", regexp.MustCompile(`\brm\s+(?:-[a-zA-Z]+\s+)*-[a-zA-Z]*f[a-zA-Z]*\s+(?:-[a-zA-Z]+\s+)*-[a-zA-Z]*r\b`)},
	{"recursive force delete", regexp.MustCompile(`\brm\b[^|;&]*--recursive\b[^|;&]*--force\b`)},
	{"recursive force delete", regexp.MustCompile(`\brm\b[^|;&]*--force\b[^|;&]*--recursive\b`)},

	// Forced pushes rewrite shared history.
	{"forced git push", regexp.MustCompile(`\bgit\s+push\b[^|;&]*(?:--force(?:-with-lease)?\b|\s-f\b)`)},

	// Piping network-fetched content into a shell.
	{"network fetch piped to shell", regexp.MustCompile(`\b(?:curl|wget)\b[^|;&]*\|\s*(?:sudo\s+)?(?:ba|z|da)?sh\b`)},
	{"eval of network-fetched content", regexp.MustCompile(`\beval\b[^;&]*\$\([^)]*\b(?:curl|wget)\b`)},
	{"eval of network-fetched content", regexp.MustCompile("\\beval\\b[^;&]*`[^`]*\\b(?:curl|wget)\\b")},

	// Credential exfiltration.
	{"credential exfiltration", regexp.MustCompile(`\b(?:curl|wget|nc|scp|rsync)\b[^;&]*(?:\.ssh/|\.aws/credentials|\.netrc\b|id_rsa\b|id_ed25519\b)`)},
	{"credential exfiltration", regexp.MustCompile(`\b(?:cat|base64)\b[^;&|]*(?:\.ssh/|\.aws/credentials|\.netrc\b|id_rsa\b|id_ed25519\b)[^;&]*\|\s*(?:curl|wget|nc)\b`)},

	// Filesystem and device destruction.
	{"world-writable permission change on root path", regexp.MustCompile(`\bchmod\s+(?:-[a-zA-Z]+\s+)*0?777\s+/`)},
	{"raw write to block device", regexp.MustCompile(`\bdd\b[^;&|]*\bof=/dev/(?:sd|hd|nvme|disk)`)},
	{"filesystem format", regexp.MustCompile(`\bmkfs(?:\.\w+)?\b`)},
	{"redirect onto block device", regexp.MustCompile(`>\s*/dev/(?:sd|hd|nvme)`)},

	// Classic fork bomb.
	{"fork bomb", regexp.MustCompile(`:\(\)\s*\{`)},
}

// checkDenylist scans one command string against every deny rule.
func checkDenylist(res *Result, action int, command string) {
	for _, rule := range denyRules {
		if rule.re.MatchString(command) {
			res.failf(RuleDenylist, "action %d matches destructive pattern: %s", action, rule.desc)
		}
	}
}
