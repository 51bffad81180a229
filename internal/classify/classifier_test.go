package classify

import (
	"testing"

	"github.com/aliskhannn/media-exporter/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		fileName string
		want     model.Category
	}{
		{"staff_tanaka.jpg", model.CategoryStaff},
		{"STAFF_photo.jpg", model.CategoryStaff},
		{"スタッフ01.png", model.CategoryStaff},
		{"company_logo.png", model.CategoryLogo},
		{"ロゴ.jpg", model.CategoryLogo},
		{"shop_photo_01.jpg", model.CategoryPhoto},
		{"main_entrance.jpg", model.CategoryPhoto},
		{"店内写真.jpg", model.CategoryPhoto},
		{"IMG_4921.HEIC", model.CategoryPhoto}, // no keyword, default
		{"", model.CategoryPhoto},
	}

	for _, tt := range tests {
		if got := Classify(tt.fileName); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.fileName, got, tt.want)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	upper := Classify("STAFF_photo.jpg")
	lower := Classify("staff_photo.jpg")

	if upper != lower {
		t.Errorf("classification is case-sensitive: %v != %v", upper, lower)
	}
	if upper != model.CategoryStaff {
		t.Errorf("expected staff, got %v", upper)
	}
}

func TestClassifyStaffBeatsLogo(t *testing.T) {
	// A file name containing both markers resolves to the earlier rule.
	if got := Classify("staff_logo.jpg"); got != model.CategoryStaff {
		t.Errorf("Classify(staff_logo.jpg) = %v, want staff", got)
	}
}
