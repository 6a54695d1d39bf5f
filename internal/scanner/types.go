package scanner

import "fmt"

// Kind classifies a FileItem.
type Kind int

const (
	Duplicate Kind = iota
	Orphan
)

func (k Kind) String() string {
	switch k {
	case Duplicate:
		return "duplicate"
	case Orphan:
		return "orphan"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// FileItem is one classified file. ArchivePath is set only for duplicates.
type FileItem struct {
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
	Size        int64  `json:"size"`
	Kind        Kind   `json:"kind"`
	ArchivePath string `json:"archivePath,omitempty"`
}

// Status is how a scan or action run ended.
type Status int

const (
	Completed Status = iota
	Cancelled
	Failed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is the outcome of one scan. Items are in BFS directory order.
type Result struct {
	Status      Status     `json:"status"`
	Items       []FileItem `json:"items"`
	TotalDirs   int        `json:"totalDirs"`
	VisitedDirs int        `json:"visitedDirs"`
	Err         error      `json:"-"`
}

// Split returns the duplicates and orphans of r, preserving order.
func (r Result) Split() (dups, orphans []FileItem) {
	for _, it := range r.Items {
		if it.Kind == Duplicate {
			dups = append(dups, it)
		} else {
			orphans = append(orphans, it)
		}
	}
	return dups, orphans
}
