// Package classify infers an image's semantic category from its file name.
package classify

import (
	"strings"

	"github.com/aliskhannn/media-exporter/internal/model"
)

// Keyword sets checked against the lower-cased file name. Order matters:
// staff markers win over logo markers, which win over photo markers.
var (
	staffKeywords = []string{"staff", "スタッフ"}
	logoKeywords  = []string{"logo", "ロゴ"}
	photoKeywords = []string{"photo", "写真", "main"}
)

// Classify derives the category of an image from its file name. The match is
// a case-insensitive substring check, first match wins, and anything that
// matches nothing falls back to Photo. The function is total: there is no
// input it can fail on.
func Classify(fileName string) model.Category {
	name := strings.ToLower(fileName)

	if containsAny(name, staffKeywords) {
		return model.CategoryStaff
	}
	if containsAny(name, logoKeywords) {
		return model.CategoryLogo
	}
	if containsAny(name, photoKeywords) {
		return model.CategoryPhoto
	}

	return model.CategoryPhoto
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
