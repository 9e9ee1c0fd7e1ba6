package utils

import (
	"path"
	"sort"
	"strings"
	"time"

	"matchfeed_server/models"
)

const blurredSuffix = "_blurred"

// BlurredKey derives the storage key of a photo's blurred variant:
// "photos/a.jpg" -> "photos/a_blurred.jpg", "photos/a" -> "photos/a_blurred"
func BlurredKey(storageKey string) string {
	ext := path.Ext(storageKey)
	// A dot inside a directory name is not an extension
	if strings.Contains(ext, "/") {
		ext = ""
	}
	return strings.TrimSuffix(storageKey, ext) + blurredSuffix + ext
}

// BlurredKeyOf returns the photo's explicit blurred key or the derived one
func BlurredKeyOf(p models.Photo) string {
	if p.BlurredStorageKey != "" {
		return p.BlurredStorageKey
	}
	return BlurredKey(p.StorageKey)
}

// SortPhotos returns a copy of photos with the profile photo first and the
// rest in display order.
func SortPhotos(photos []models.Photo) []models.Photo {
	sorted := make([]models.Photo, len(photos))
	copy(sorted, photos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsProfile != sorted[j].IsProfile {
			return sorted[i].IsProfile
		}
		return sorted[i].DisplayOrder < sorted[j].DisplayOrder
	})
	return sorted
}

// Renumber rewrites DisplayOrder to match slice positions
func Renumber(photos []models.Photo) {
	for i := range photos {
		photos[i].DisplayOrder = i
	}
}

// AgeOn computes the age in whole years on the given day from a YYYY-MM-DD
// date of birth. Unparseable dates yield 0.
func AgeOn(dob string, today time.Time) int {
	born, err := time.Parse(time.DateOnly, dob)
	if err != nil {
		return 0
	}
	age := today.Year() - born.Year()
	if today.Month() < born.Month() || (today.Month() == born.Month() && today.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
