package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/service"
	"showcase-cms/internal/content/editor"
	"showcase-cms/internal/content/seed"
	apperrors "showcase-cms/internal/shared/errors"
)

// ErrNotSaved is returned when the store rejected or never received an edit.
var ErrNotSaved = errors.New("changes were not saved")

type noticeLog struct {
	mu      sync.Mutex
	notices []editor.Notice
}

func (l *noticeLog) add(n editor.Notice) {
	l.mu.Lock()
	l.notices = append(l.notices, n)
	l.mu.Unlock()
}

func (l *noticeLog) list() []editor.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]editor.Notice(nil), l.notices...)
}

// drain returns the notices recorded since the last drain.
func (l *noticeLog) drain() []editor.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.notices
	l.notices = nil
	return out
}

func (l *noticeLog) has(kind editor.NoticeKind) bool {
	for _, n := range l.list() {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// session is one loaded editor for a single CLI invocation.
type session struct {
	parentID string
	key      model.CollectionKey
	ed       *editor.Editor
	notices  *noticeLog
}

// openSession loads parentID/key. Without force, a failed load aborts so that defaults
// are never written over content that could not be read, and so does a merge that
// disagrees with the server's reconciled view.
func openSession(ctx context.Context, opts *RootOptions, parentID, rawKey string, force bool, extra ...editor.Option) (*session, error) {
	key, err := model.ParseCollectionKey(rawKey)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateParentID(parentID); err != nil {
		return nil, err
	}
	catalog, err := seed.Load()
	if err != nil {
		return nil, err
	}

	client := opts.client()
	notices := &noticeLog{}
	ed := editor.New(client, parentID, key, append([]editor.Option{
		editor.WithFallback(catalog.Fallback(key)),
		editor.WithReconciler(service.NewReconciler(service.WithPlaceholderHeuristic(opts.PlaceholderHeuristic))),
		editor.WithNoticeFunc(notices.add),
	}, extra...)...)
	ed.Load(ctx)
	if notices.has(editor.NoticeFetchFailed) {
		if !force {
			for _, n := range notices.list() {
				if n.Kind == editor.NoticeFetchFailed {
					return nil, fmt.Errorf("load %s/%s: %w (use --force to edit the defaults)", parentID, key, n.Err)
				}
			}
		}
	} else if !force {
		if err := checkMerge(ctx, client, ed, parentID, key); err != nil {
			return nil, err
		}
	}
	return &session{parentID: parentID, key: key, ed: ed, notices: notices}, nil
}

// checkMerge compares the local merge with the server's. Indices typed by the operator
// refer to the list the site shows, so a different merge would edit the wrong record.
func checkMerge(ctx context.Context, client Client, ed *editor.Editor, parentID string, key model.CollectionKey) error {
	view, err := client.Reconciled(ctx, parentID, key)
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", parentID, key, err)
	}
	if view.Version != ed.Version() {
		// changed in between; the save's version check covers it
		return nil
	}
	items := ed.Items()
	same := len(items) == len(view.Items)
	for i := 0; same && i < len(items); i++ {
		same = service.Identity(items[i]) == view.Items[i].Identity
	}
	if !same {
		return fmt.Errorf("load %s/%s: local merge differs from the server's; set --placeholder-heuristic or %s to match the server (or use --force)",
			parentID, key, heuristicEnv)
	}
	return nil
}

// finish waits for the persist and reports it.
func (s *session) finish(w, errw io.Writer, format string) error {
	s.ed.Wait()
	if failed := printNotices(errw, s.notices.list()); failed {
		return ErrNotSaved
	}
	return printItems(w, format, s.view())
}

func (s *session) view() collectionView {
	return collectionView{
		ParentID: s.parentID,
		Key:      s.key,
		Version:  s.ed.Version(),
		Items:    s.ed.Items(),
	}
}

// printNotices writes notices to errw and reports whether a save failed.
func printNotices(errw io.Writer, notices []editor.Notice) bool {
	failed := false
	for _, n := range notices {
		if n.Kind == editor.NoticeSaveFailed {
			failed = true
		}
		if n.Err != nil {
			fmt.Fprintf(errw, "%s: %s: %v\n", n.Kind, n.Message, n.Err)
		} else {
			fmt.Fprintf(errw, "%s: %s\n", n.Kind, n.Message)
		}
	}
	return failed
}

// describeValidation lists offending fields on errw and returns err unchanged.
func describeValidation(errw io.Writer, err error) error {
	var ve *apperrors.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			fmt.Fprintf(errw, "  %s: %s\n", fe.Field, fe.Message)
		}
	}
	return err
}
