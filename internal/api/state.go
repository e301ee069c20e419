package api

// FileState is the authoritative lifecycle state of a tracked path.
type FileState string

const (
	FileExists  FileState = "Exists"
	FileDeleted FileState = "Deleted"
	FileIgnored FileState = "Ignored"
)

// ParseFileState maps a stored string back to a FileState.
// Unknown values collapse to FileIgnored so a bad row never syncs.
func ParseFileState(raw string) FileState {
	switch raw {
	case string(FileExists):
		return FileExists
	case string(FileDeleted):
		return FileDeleted
	default:
		return FileIgnored
	}
}

func (s FileState) String() string {
	return string(s)
}

// Valid reports whether s is one of the known states.
func (s FileState) Valid() bool {
	switch s {
	case FileExists, FileDeleted, FileIgnored:
		return true
	}
	return false
}
