package engine

import (
	"fmt"
	"maps"
	"os"
	"strings"
)

// Context is an immutable snapshot of the ambient execution environment for
// a test run: the working directory the run is rooted at and the full set of
// environment variables visible to the spawned program. Passing a Context
// explicitly instead of relying on the hosting process keeps executions
// reproducible and lets tests substitute a fake environment.
type Context struct {
	cwd string
	env map[string]string
}

// NewContext builds a context from an explicit working directory and
// environment set. The environment map is copied; later mutations of the
// caller's map do not affect the context.
func NewContext(cwd string, env map[string]string) Context {
	return Context{
		cwd: cwd,
		env: maps.Clone(env),
	}
}

// Current captures the real working directory and environment of the calling
// process. Returns an error if the working directory cannot be resolved.
func Current() (Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Context{}, fmt.Errorf("failed to resolve current working directory: %w", err)
	}

	env := make(map[string]string)
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		env[name] = value
	}

	return NewContext(cwd, env), nil
}

// Cwd returns the working directory of the context.
func (c Context) Cwd() string {
	return c.cwd
}

// Env returns a copy of the environment variables of the context.
func (c Context) Env() map[string]string {
	return maps.Clone(c.env)
}

// Equal reports whether two contexts denote the same execution environment.
// Equality is structural: both the working directory and the full variable
// set must match.
func (c Context) Equal(other Context) bool {
	return c.cwd == other.cwd && maps.Equal(c.env, other.env)
}
