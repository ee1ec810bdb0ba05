// Package envscope assembles the per-job environment mapping. It mirrors
// shell-style prefix assignment (`FOO=1 BAR=1 ./script.sh`): an explicit,
// immutable mapping built per invocation instead of mutating the process
// environment, so no job can observe another job's variables.
package envscope

import (
	"fmt"
	"sort"
	"strings"
)

// Build merges the override maps onto base, left to right, into a fresh
// map. A later override wins over an earlier one with the same key. The
// base map is never mutated.
func Build(base map[string]string, overrides ...map[string]string) map[string]string {
	size := len(base)
	for _, o := range overrides {
		size += len(o)
	}
	merged := make(map[string]string, size)
	for key, value := range base {
		merged[key] = value
	}
	for _, override := range overrides {
		for key, value := range override {
			merged[key] = value
		}
	}
	return merged
}

// FromEnviron converts an os.Environ-style slice into a mapping. Malformed
// entries without '=' are ignored.
func FromEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		if name, value, ok := strings.Cut(entry, "="); ok {
			env[name] = value
		}
	}
	return env
}

// ToEnviron flattens a mapping into the KEY=value form expected by
// exec.Cmd.Env. Keys are sorted so the result is deterministic.
func ToEnviron(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	environ := make([]string, 0, len(env))
	for _, key := range keys {
		environ = append(environ, fmt.Sprintf("%s=%s", key, env[key]))
	}
	return environ
}
