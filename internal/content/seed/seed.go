// Package seed holds the fallback collections and curated asset tables compiled into the binary.
package seed

import (
	_ "embed"
	"fmt"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/service"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed seeds.yaml
	seedsYAML []byte
	//go:embed assets.yaml
	assetsYAML []byte
)

// Catalog is the static fallback content.
type Catalog struct {
	collections map[model.CollectionKey][]model.CollectionItem
	assets      map[model.Kind]map[string]string
}

type seedFile struct {
	Collections map[string][]model.CollectionItem `yaml:"collections"`
}

type assetFile struct {
	Assets map[string]map[string]string `yaml:"assets"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(seedsYAML, assetsYAML)
}

// MustLoad is Load for package initialisation; the embedded files are covered by tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from raw YAML. Collection keys and kinds must be known and
// seed identities must be unique within each collection.
func Parse(seeds, assets []byte) (*Catalog, error) {
	var sf seedFile
	if err := yaml.Unmarshal(seeds, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	var af assetFile
	if err := yaml.Unmarshal(assets, &af); err != nil {
		return nil, fmt.Errorf("failed to parse asset table: %w", err)
	}

	c := &Catalog{
		collections: make(map[model.CollectionKey][]model.CollectionItem, len(sf.Collections)),
		assets:      make(map[model.Kind]map[string]string, len(af.Assets)),
	}
	for rawKey, items := range sf.Collections {
		key, err := model.ParseCollectionKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("seeds: %w", err)
		}
		seen := make(map[string]struct{}, len(items))
		for idx, item := range items {
			id := service.Identity(item)
			if id == "" {
				return nil, fmt.Errorf("seeds: %s[%d] has no name or title", key, idx)
			}
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("seeds: %s[%d] duplicates identity %q", key, idx, id)
			}
			seen[id] = struct{}{}
		}
		c.collections[key] = items
	}
	for rawKind, table := range af.Assets {
		kind, err := model.ParseKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("asset table: %w", err)
		}
		c.assets[kind] = table
	}
	return c, nil
}

// Fallback returns a copy of the seed collection for key; unseeded keys yield an empty slice.
func (c *Catalog) Fallback(key model.CollectionKey) []model.CollectionItem {
	return model.CloneItems(c.collections[key])
}

// Keys lists the seeded collection keys.
func (c *Catalog) Keys() []model.CollectionKey {
	keys := make([]model.CollectionKey, 0, len(c.collections))
	for key := range c.collections {
		keys = append(keys, key)
	}
	return keys
}

// AssetTables returns the curated per-kind tables in display form, for NewAssetResolver.
func (c *Catalog) AssetTables() map[model.Kind]map[string]string {
	out := make(map[model.Kind]map[string]string, len(c.assets))
	for kind, table := range c.assets {
		copied := make(map[string]string, len(table))
		for name, file := range table {
			copied[name] = file
		}
		out[kind] = copied
	}
	return out
}

// Resolver builds an AssetResolver over the curated tables and the default layouts.
func (c *Catalog) Resolver() *service.AssetResolver {
	return service.NewAssetResolver(c.AssetTables(), nil)
}
