// Package mediaprofile holds the table of export targets: which pixel
// dimensions each publishing profile requires per image category.
package mediaprofile

import (
	"github.com/aliskhannn/media-exporter/internal/model"
)

// Profile names shipped by default.
const (
	ProfileEPARK       = "epark"
	ProfilePeakManager = "peakmanager"
)

// Catalog maps (profile, category) to a target size. A missing entry means
// the category is not exported under that profile; callers treat that as a
// valid skip, not an error.
type Catalog struct {
	entries map[string]map[model.Category]model.TargetSize
}

// NewCatalog builds a catalog from the given table. The table is copied so
// later mutation of the argument does not leak into the catalog.
func NewCatalog(table map[string]map[model.Category]model.TargetSize) *Catalog {
	entries := make(map[string]map[model.Category]model.TargetSize, len(table))
	for profile, sizes := range table {
		m := make(map[model.Category]model.TargetSize, len(sizes))
		for cat, size := range sizes {
			m[cat] = size
		}
		entries[profile] = m
	}
	return &Catalog{entries: entries}
}

// Default returns the built-in profile table.
func Default() *Catalog {
	return NewCatalog(map[string]map[model.Category]model.TargetSize{
		ProfileEPARK: {
			model.CategoryPhoto: {Width: 660, Height: 440},
			model.CategoryStaff: {Width: 150, Height: 174},
			model.CategoryLogo:  {Width: 330, Height: 220},
		},
		ProfilePeakManager: {
			model.CategoryPhoto: {Width: 900, Height: 600},
			model.CategoryStaff: {Width: 400, Height: 400},
			// Logo is excluded for PeakManager.
		},
	})
}

// Set adds or replaces a single catalog entry. Used to extend the default
// table from configuration.
func (c *Catalog) Set(profile string, category model.Category, size model.TargetSize) {
	m, ok := c.entries[profile]
	if !ok {
		m = make(map[model.Category]model.TargetSize)
		c.entries[profile] = m
	}
	m[category] = size
}

// TargetSize resolves the output dimensions for a profile/category pair.
// The second return value is false when the category is excluded from that
// profile (or the profile is unknown).
func (c *Catalog) TargetSize(profile string, category model.Category) (model.TargetSize, bool) {
	sizes, ok := c.entries[profile]
	if !ok {
		return model.TargetSize{}, false
	}
	size, ok := sizes[category]
	if !ok || size.Width <= 0 || size.Height <= 0 {
		return model.TargetSize{}, false
	}
	return size, true
}

// Profiles lists the known profile names.
func (c *Catalog) Profiles() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	return names
}

// Has reports whether the profile exists in the catalog at all.
func (c *Catalog) Has(profile string) bool {
	_, ok := c.entries[profile]
	return ok
}
