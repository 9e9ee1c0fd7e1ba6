package services

import (
	"context"
	"strings"

	"matchfeed_server/models"
	"matchfeed_server/utils"

	"go.uber.org/zap"
)

// ObjectRemover deletes storage objects on a best-effort basis
type ObjectRemover interface {
	DeleteObjects(ctx context.Context, keys ...string)
}

// PhotoService maintains a profile's photo list
type PhotoService struct {
	Profiles ProfileStore
	Objects  ObjectRemover
	Logger   *zap.Logger
}

// AddPhoto registers an uploaded object as the profile's next photo
func (s *PhotoService) AddPhoto(ctx context.Context, profileID, storageKey string, isProfile bool) ([]models.Photo, error) {
	profile, err := s.Profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(profile.Photos) >= models.MaxPhotos {
		return nil, ErrPhotoLimit
	}
	if indexOfPhoto(profile.Photos, storageKey) >= 0 {
		return nil, ErrPhotoExists
	}

	photos := utils.SortPhotos(profile.Photos)
	photo := models.Photo{
		StorageKey:        storageKey,
		BlurredStorageKey: utils.BlurredKey(storageKey),
		// The first photo of a profile becomes its profile photo
		IsProfile: isProfile || len(photos) == 0,
	}
	if photo.IsProfile {
		for i := range photos {
			photos[i].IsProfile = false
		}
		photos = append([]models.Photo{photo}, photos...)
	} else {
		photos = append(photos, photo)
	}
	utils.Renumber(photos)

	if err := s.Profiles.UpdatePhotos(ctx, profileID, photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// SetProfilePhoto flags storageKey as the profile photo and moves it first
func (s *PhotoService) SetProfilePhoto(ctx context.Context, profileID, storageKey string) ([]models.Photo, error) {
	profile, err := s.Profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	photos := utils.SortPhotos(profile.Photos)
	idx := indexOfPhoto(photos, storageKey)
	if idx < 0 {
		return nil, ErrPhotoNotFound
	}

	chosen := photos[idx]
	chosen.IsProfile = true
	reordered := []models.Photo{chosen}
	for i, p := range photos {
		if i == idx {
			continue
		}
		p.IsProfile = false
		reordered = append(reordered, p)
	}
	utils.Renumber(reordered)

	if err := s.Profiles.UpdatePhotos(ctx, profileID, reordered); err != nil {
		return nil, err
	}
	return reordered, nil
}

// DeletePhoto removes a photo record and then both of its stored variants.
// Object removal failures are logged, not returned.
func (s *PhotoService) DeletePhoto(ctx context.Context, profileID, storageKey string) ([]models.Photo, error) {
	profile, err := s.Profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	photos := utils.SortPhotos(profile.Photos)
	idx := indexOfPhoto(photos, storageKey)
	if idx < 0 {
		return nil, ErrPhotoNotFound
	}
	removed := photos[idx]
	photos = append(photos[:idx], photos[idx+1:]...)
	if removed.IsProfile && len(photos) > 0 {
		photos[0].IsProfile = true
	}
	utils.Renumber(photos)

	if err := s.Profiles.UpdatePhotos(ctx, profileID, photos); err != nil {
		return nil, err
	}

	if s.Objects != nil {
		s.Objects.DeleteObjects(context.WithoutCancel(ctx), removed.StorageKey, utils.BlurredKeyOf(removed))
	}
	s.Logger.Info("🗑️ Photo deleted", zap.String("profile", profileID), zap.String("key", storageKey))
	return photos, nil
}

func indexOfPhoto(photos []models.Photo, storageKey string) int {
	key := strings.TrimSpace(storageKey)
	for i, p := range photos {
		if p.StorageKey == key {
			return i
		}
	}
	return -1
}
