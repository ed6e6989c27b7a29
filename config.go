package shi

import "os"

// Config holds the three environment-derived settings spec.md §6
// names. It plays the same role the teacher's typed settings map
// does — a single place that turns ambient environment strings into
// checked Go values before anything else touches them — but the
// settings surface here is fixed and small enough that a generic
// path-keyed map would just add indirection: three named fields
// instead, plus HistoryPath derived from Home.
type Config struct {
	DebugGC  bool
	AlwaysGC bool
	Home     string
}

// LoadConfig reads SHI_DEBUG_GC, SHI_ALWAYS_GC, and HOME from the
// process environment (spec.md §6: "any non-empty value" for the two
// booleans).
func LoadConfig() Config {
	return Config{
		DebugGC:  os.Getenv("SHI_DEBUG_GC") != "",
		AlwaysGC: os.Getenv("SHI_ALWAYS_GC") != "",
		Home:     os.Getenv("HOME"),
	}
}

// HistoryPath returns $HOME/.shi-history, or "" if HOME is unset.
func (c Config) HistoryPath() string {
	if c.Home == "" {
		return ""
	}
	return c.Home + "/.shi-history"
}
