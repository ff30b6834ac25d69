package heracles

// Flag bits influence how New and Save behave (spec.md §6 "flags").
type Flag uint

const (
	// SaveBackup keeps the original file with a .herasave extension.
	SaveBackup Flag = 1 << iota

	// SaveNewFile saves changes into a file with extension .heranew,
	// and does not overwrite the original file. Takes precedence over
	// SaveBackup.
	SaveNewFile

	// TypeCheck is accepted for compatibility; this implementation has
	// no lens type checker, so the flag has no effect.
	TypeCheck

	// NoStdinc is accepted for compatibility; lenses come from the
	// built-in fixture registry, so the flag has no effect.
	NoStdinc

	// SaveNoop makes Save a no-op: it records what would have changed
	// without writing anything.
	SaveNoop

	// NoLoad skips the automatic tree load that New otherwise performs.
	NoLoad

	// NoModlAutoload is accepted for compatibility; no transforms are
	// discovered from modules, so the flag has no effect.
	NoModlAutoload

	// EnableSpan lets Span return a node's recorded source span.
	// Neither the loader nor the fixture lenses record spans, so Span
	// fails with ENOSPAN whether or not this flag is set.
	EnableSpan

	// NoErrClose keeps the handle usable after an initialization error
	// instead of automatically closing it.
	NoErrClose

	// TraceModuleLoading turns on verbose logging of module/lens
	// resolution, the YYDEBUG-equivalent knob.
	TraceModuleLoading
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }
