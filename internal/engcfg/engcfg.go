// Package engcfg resolves the engine's environment-variable
// configuration (spec.md §6's HERACLES_ROOT, HERACLES_LENS_LIB,
// YYDEBUG) and, for the CLI only, an ini-based defaults file, using an
// env-var-with-fallback idiom.
package engcfg

import (
	"os"
	"strconv"
)

// Env holds the engine configuration resolved from the environment at
// New() time, before any -root/-lens-lib flag overrides are applied.
type Env struct {
	// Root is the filesystem prefix every absolute path is resolved
	// under, defaulting to "/" (spec.md §6, HERACLES_ROOT).
	Root string

	// LensLib is the colon-separated list of extra directories to
	// search for lenses, appended to the built-in search path
	// (HERACLES_LENS_LIB). The CLI passes it to heracles.New as
	// loadPath; the engine's fixture-lens registry does not consult the
	// filesystem, so the value is not used beyond that.
	LensLib string

	// Debug mirrors YYDEBUG. It is only recorded here; neither the CLI
	// nor the engine reads it.
	Debug bool
}

// FromEnviron resolves an Env from the process environment.
func FromEnviron() *Env {
	e := &Env{Root: "/"}
	if root := os.Getenv("HERACLES_ROOT"); root != "" {
		e.Root = root
	}
	e.LensLib = os.Getenv("HERACLES_LENS_LIB")
	if v := os.Getenv("YYDEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			e.Debug = b
		} else {
			e.Debug = true
		}
	}
	return e
}
