package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/usecase"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// collectionView is the JSON shape printed after an edit.
type collectionView struct {
	ParentID string                 `json:"parentId"`
	Key      model.CollectionKey    `json:"key"`
	Version  int64                  `json:"version"`
	Items    []model.CollectionItem `json:"items"`
}

func printItems(w io.Writer, format string, view collectionView) error {
	if format == FormatJSON {
		return writeJSON(w, view)
	}
	fmt.Fprintf(w, "%s/%s v%d (%d items)\n", view.ParentID, view.Key, view.Version, len(view.Items))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, item := range view.Items {
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", i, item.DisplayName(), summary(item))
	}
	return tw.Flush()
}

func printReconciled(w io.Writer, format string, view *usecase.ReconciledCollection) error {
	if format == FormatJSON {
		return writeJSON(w, view)
	}
	origin := "saved"
	if view.UsedFallback {
		origin = "defaults"
	}
	fmt.Fprintf(w, "%s/%s v%d (%d items, %s)\n", view.ParentID, view.Key, view.Version, len(view.Items), origin)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, item := range view.Items {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t[%s]\n", i, item.DisplayName(), item.AssetPath, item.Source)
	}
	return tw.Flush()
}

func summary(item model.CollectionItem) string {
	parts := make([]string, 0, 3)
	for _, v := range []string{item.Role, item.Organization, item.City, item.URL} {
		if v != "" {
			parts = append(parts, v)
		}
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, " · ")
}
