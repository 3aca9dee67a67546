package service

import (
	"path"
	"strings"

	"showcase-cms/internal/content/domain/model"
)

// AssetLayout is the fixed directory and extension of one kind's asset files.
type AssetLayout struct {
	Dir string `yaml:"dir"`
	Ext string `yaml:"ext"`
}

// DefaultAssetLayouts maps each kind to where its images live.
var DefaultAssetLayouts = map[model.Kind]AssetLayout{
	model.KindPartner:        {Dir: "/images/partners", Ext: ".png"},
	model.KindGuest:          {Dir: "/images/guests", Ext: ".jpg"},
	model.KindGallery:        {Dir: "/images/gallery", Ext: ".jpg"},
	model.KindCoverage:       {Dir: "/images/coverage", Ext: ".jpg"},
	model.KindAwardRecipient: {Dir: "/images/awardees", Ext: ".jpg"},
	model.KindTeamMember:     {Dir: "/images/team", Ext: ".jpg"},
	model.KindHighlight:      {Dir: "/images/highlights", Ext: ".jpg"},
}

var fallbackLayout = AssetLayout{Dir: "/images", Ext: ".jpg"}

var separatorReplacer = strings.NewReplacer("/", "-", `\`, "-")

// AssetResolver maps display names to stable asset paths.
type AssetResolver struct {
	layouts  map[model.Kind]AssetLayout
	explicit map[model.Kind]map[string]string
}

// NewAssetResolver builds a resolver over curated per-kind tables. Table keys are
// normalized here, so they may be written in display form.
func NewAssetResolver(explicit map[model.Kind]map[string]string, layouts map[model.Kind]AssetLayout) *AssetResolver {
	if layouts == nil {
		layouts = DefaultAssetLayouts
	}
	r := &AssetResolver{
		layouts:  layouts,
		explicit: make(map[model.Kind]map[string]string, len(explicit)),
	}
	for kind, table := range explicit {
		normalized := make(map[string]string, len(table))
		for name, file := range table {
			normalized[Normalize(name)] = file
		}
		r.explicit[kind] = normalized
	}
	return r
}

// Layout returns the layout for kind.
func (r *AssetResolver) Layout(kind model.Kind) AssetLayout {
	if layout, ok := r.layouts[kind]; ok {
		return layout
	}
	return fallbackLayout
}

// Resolve returns the asset path for name. It never fails and never checks the file exists.
func (r *AssetResolver) Resolve(kind model.Kind, name string) string {
	return ResolveWith(r.Layout(kind), name, r.explicit[kind])
}

// ResolveWith looks Normalize(name) up in explicitMap (keys already normalized); a miss
// falls back to the raw name with periods removed. Path separators in the file name are
// replaced so the result always stays under layout.Dir.
func ResolveWith(layout AssetLayout, name string, explicitMap map[string]string) string {
	file, ok := explicitMap[Normalize(name)]
	if !ok {
		file = DefaultFileName(name)
	}
	return path.Join(layout.Dir, separatorReplacer.Replace(file)+layout.Ext)
}

// DefaultFileName is the naive transform: periods stripped, surrounding space trimmed.
func DefaultFileName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, ".", ""))
}
