package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns the identifier with commit and date when they are known, for
// the boot log line.
func String() string {
	s := Short()
	if Commit != "" && Commit != "unknown" && s != Commit {
		s += " " + Commit
	}
	if Date != "" && Date != "unknown" {
		s += " (" + Date + ")"
	}
	return s
}
