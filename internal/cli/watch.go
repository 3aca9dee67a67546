package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"showcase-cms/internal/content/domain/model"

	"github.com/fasthttp/websocket"
	"github.com/spf13/cobra"
)

type feedFrame struct {
	Type string                 `json:"type"`
	Data model.CollectionChange `json:"data"`
}

// feedURL derives the change-feed endpoint from the API base URL.
func feedURL(apiURL, parentID, key string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid api url %q: scheme must be http or https", apiURL)
	}
	u.Path += "/ws/v1/listen"
	q := url.Values{}
	if parentID != "" {
		q.Set("parentId", parentID)
	}
	if key != "" {
		q.Set("key", key)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewWatchCommand streams collection changes until interrupted or --count is reached.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var (
		parentID string
		key      string
		count    int
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream collection changes",
		Long: `Stream collection changes. With --follow, --parent and --key name one collection;
it is loaded once and reloaded and printed whenever a change makes it stale.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key != "" {
				if _, err := model.ParseCollectionKey(key); err != nil {
					return err
				}
			}
			if follow && (parentID == "" || key == "") {
				return fmt.Errorf("--follow needs --parent and --key")
			}
			target, err := feedURL(opts.APIURL, parentID, key)
			if err != nil {
				return err
			}
			var s *session
			if follow {
				if s, err = openSession(cmd.Context(), opts, parentID, key, false); err != nil {
					return err
				}
			}
			return watch(cmd.Context(), cmd, opts, target, count, s)
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "only changes to this parent")
	cmd.Flags().StringVar(&key, "key", "", "only changes to this collection")
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many changes (0 = until interrupted)")
	cmd.Flags().BoolVar(&follow, "follow", false, "keep the collection loaded and reprint it when it goes stale")
	return cmd
}

// watch prints feed frames. A non-nil follow is marked stale by every frame and reloaded
// when that leaves it behind the store.
func watch(ctx context.Context, cmd *cobra.Command, opts *RootOptions, target string, count int, follow *session) error {
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = opts.Timeout

	conn, _, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		return fmt.Errorf("failed to connect to change feed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	w, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if follow != nil {
		// changes between the load and the subscription have no frame
		if snap, err := opts.client().Fetch(ctx, follow.parentID, follow.key); err == nil {
			follow.ed.MarkStale(snap.Version)
		}
		if err := refresh(ctx, w, errw, opts.Format, follow); err != nil {
			return err
		}
	}

	for seen := 0; count == 0 || seen < count; seen++ {
		var frame feedFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("change feed closed: %w", err)
		}
		if err := printFrame(w, opts.Format, frame); err != nil {
			return err
		}
		if follow != nil {
			follow.ed.MarkStale(frame.Data.Version)
			if err := refresh(ctx, w, errw, opts.Format, follow); err != nil {
				return err
			}
		}
	}
	return nil
}

func printFrame(w io.Writer, format string, frame feedFrame) error {
	if format == FormatJSON {
		return writeJSON(w, frame)
	}
	c := frame.Data
	actor := c.Actor
	if actor == "" {
		actor = "-"
	}
	_, err := fmt.Fprintf(w, "%s %s/%s v%d items=%d by %s\n",
		c.At.Format("2006-01-02T15:04:05Z07:00"), c.ParentID, c.Key, c.Version, c.ItemCount, actor)
	return err
}

// refresh reloads a stale session and prints the list.
func refresh(ctx context.Context, w, errw io.Writer, format string, s *session) error {
	if !s.ed.Stale() {
		return nil
	}
	s.ed.Load(ctx)
	printNotices(errw, s.notices.drain())
	return printItems(w, format, s.view())
}
