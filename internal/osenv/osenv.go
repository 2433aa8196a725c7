// Package osenv seeds a pipeline's root environment from the host
// process's environment variables. It is adapted from the teacher's
// shell.Environment (shell/environment.go): the same KEY=VALUE parsing
// and quote/escape handling, repurposed to produce a
// pipelineenv.Environment of JSON string values instead of a
// process-exec environment.
package osenv

import (
	"os"
	"strings"

	"github.com/flowforge/agent/internal/pipelineenv"
)

// Seed returns a new Environment populated from os.Environ(), in the
// order the OS reports them.
func Seed() *pipelineenv.Environment {
	return FromSlice(os.Environ())
}

// FromSlice builds an Environment from a slice of "KEY=VALUE" strings,
// the same shape os.Environ() and shell.EnvironmentFromSlice consume.
func FromSlice(lines []string) *pipelineenv.Environment {
	e := pipelineenv.New()
	for _, l := range lines {
		key, value, ok := splitKV(l)
		if !ok {
			continue
		}
		e.Insert(key, unquote(value))
	}
	return e
}

func splitKV(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

// unquote mirrors shell.Environment.Set's handling of quoted values:
// values wrapped in matching quotes have the quotes stripped and
// \" / \n escapes expanded.
func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && ((strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
		(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'"))) {
		value = value[1 : len(value)-1]
		value = strings.ReplaceAll(value, `\"`, `"`)
		value = strings.ReplaceAll(value, `\n`, "\n")
	}
	return value
}
