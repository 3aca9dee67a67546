package editor

// NoticeKind classifies a Notice.
type NoticeKind string

const (
	// NoticeFetchFailed: the load failed and the working list fell back to the seeds.
	NoticeFetchFailed NoticeKind = "fetch_failed"
	// NoticeSaveFailed: a persist failed; the local list is kept.
	NoticeSaveFailed NoticeKind = "save_failed"
	// NoticeStaleData: the store holds changes this editor has not seen.
	NoticeStaleData NoticeKind = "stale_data"
	// NoticeReapplied: a conflicting save was re-sent on top of the current version.
	NoticeReapplied NoticeKind = "reapplied"
)

// Notice is a dismissible, non-fatal signal raised by the editor.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// NoticeFunc receives notices. It may be called from persist goroutines.
type NoticeFunc func(Notice)
