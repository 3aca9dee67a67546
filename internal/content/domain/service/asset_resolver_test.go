package service

import (
	"testing"

	"showcase-cms/internal/content/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestResolveWith_ExplicitMap(t *testing.T) {
	layout := DefaultAssetLayouts[model.KindAwardRecipient]

	got := ResolveWith(layout, "A. J. Jawad", map[string]string{"a j jawad": "A J Jawad"})

	assert.Equal(t, "/images/awardees/A J Jawad.jpg", got)
}

func TestResolveWith_DefaultTransform(t *testing.T) {
	layout := DefaultAssetLayouts[model.KindGuest]

	assert.Equal(t, "/images/guests/Dr XY Unknown.jpg", ResolveWith(layout, "Dr. X.Y. Unknown", map[string]string{}))
	assert.Equal(t, "/images/guests/Dr XY Unknown.jpg", ResolveWith(layout, "Dr. X.Y. Unknown", nil))
}

func TestAssetResolver_Resolve(t *testing.T) {
	r := NewAssetResolver(map[model.Kind]map[string]string{
		model.KindPartner: {"Tata Trusts (Lead)": "tata-trusts"},
	}, nil)

	assert.Equal(t, "/images/partners/tata-trusts.png", r.Resolve(model.KindPartner, "tata trusts"))
	assert.Equal(t, "/images/partners/Unlisted Co.png", r.Resolve(model.KindPartner, "Unlisted Co."))
	// table is per kind
	assert.Equal(t, "/images/guests/tata trusts.jpg", r.Resolve(model.KindGuest, "tata trusts"))
}

func TestAssetResolver_StaysUnderDir(t *testing.T) {
	r := NewAssetResolver(nil, nil)

	assert.Equal(t, "/images/gallery/-etc-passwd.jpg", r.Resolve(model.KindGallery, "../etc/passwd"))
	assert.Equal(t, "/images/team/a-b.jpg", r.Resolve(model.KindTeamMember, `a\b`))
}

func TestAssetResolver_UnknownKindUsesFallbackLayout(t *testing.T) {
	r := NewAssetResolver(nil, nil)

	assert.Equal(t, AssetLayout{Dir: "/images", Ext: ".jpg"}, r.Layout(model.Kind("poster")))
	assert.Equal(t, "/images/x.jpg", r.Resolve(model.Kind("poster"), "x"))
}
