package hookrunner

type (
	// FileEvent is one reported filesystem event: the absolute path of
	// the affected file and what happened to it.
	FileEvent struct {
		Path string
		Kind EventKind
	}
	EventKind int
)

const (
	UNKNOWN EventKind = iota
	CHANGED
	REMOVED
)

func (r EventKind) String() string {
	return [...]string{"UNKNOWN", "CHANGED", "REMOVED"}[r]
}

func (r EventKind) EnumIndex() int {
	return int(r)
}
