package mediaprofile

import (
	"testing"

	"github.com/aliskhannn/media-exporter/internal/model"
)

func TestDefaultTable(t *testing.T) {
	catalog := Default()

	tests := []struct {
		profile  string
		category model.Category
		want     model.TargetSize
		ok       bool
	}{
		{ProfileEPARK, model.CategoryPhoto, model.TargetSize{Width: 660, Height: 440}, true},
		{ProfileEPARK, model.CategoryStaff, model.TargetSize{Width: 150, Height: 174}, true},
		{ProfileEPARK, model.CategoryLogo, model.TargetSize{Width: 330, Height: 220}, true},
		{ProfilePeakManager, model.CategoryPhoto, model.TargetSize{Width: 900, Height: 600}, true},
		{ProfilePeakManager, model.CategoryStaff, model.TargetSize{Width: 400, Height: 400}, true},
		{ProfilePeakManager, model.CategoryLogo, model.TargetSize{}, false},
		{"unknown", model.CategoryPhoto, model.TargetSize{}, false},
	}

	for _, tt := range tests {
		got, ok := catalog.TargetSize(tt.profile, tt.category)
		if ok != tt.ok {
			t.Errorf("TargetSize(%s, %s) ok = %v, want %v", tt.profile, tt.category, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("TargetSize(%s, %s) = %dx%d, want %dx%d",
				tt.profile, tt.category, got.Width, got.Height, tt.want.Width, tt.want.Height)
		}
	}
}

func TestSetExtendsCatalog(t *testing.T) {
	catalog := Default()
	catalog.Set("instagram", model.CategoryPhoto, model.TargetSize{Width: 1080, Height: 1080})

	got, ok := catalog.TargetSize("instagram", model.CategoryPhoto)
	if !ok {
		t.Fatal("expected added profile entry to resolve")
	}
	if got.Width != 1080 || got.Height != 1080 {
		t.Errorf("got %dx%d, want 1080x1080", got.Width, got.Height)
	}

	// Categories not set for the new profile stay excluded.
	if _, ok := catalog.TargetSize("instagram", model.CategoryLogo); ok {
		t.Error("expected logo to be excluded for the new profile")
	}
}

func TestZeroSizeEntryIsExcluded(t *testing.T) {
	catalog := Default()
	catalog.Set("broken", model.CategoryPhoto, model.TargetSize{})

	if _, ok := catalog.TargetSize("broken", model.CategoryPhoto); ok {
		t.Error("zero-dimension entry must behave as excluded")
	}
}
