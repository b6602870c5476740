package registry_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

// Queries read committed state and need no authorization.
// maxResults limits list sizes; 0 means no limit.

// GetApp returns the record in any state
func (s *RegistryService) GetApp(ctx context.Context, id uint64) (*models.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.loadApp(s.db, id)
}

// AppExists reports whether id was ever assigned
func (s *RegistryService) AppExists(ctx context.Context, id uint64) (bool, error) {
	_, err := s.GetApp(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListAll listed (active and approved) apps in ascending id order
func (s *RegistryService) ListAll(ctx context.Context, maxResults int) ([]*models.App, error) {
	apps := make([]*models.App, 0)
	err := s.apps.Scan(func(app *models.App) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if app.Listed() {
			apps = append(apps, app)
		}
		return maxResults <= 0 || len(apps) < maxResults, nil
	})
	return apps, err
}

// ListByCategory listed apps in category, ascending id
func (s *RegistryService) ListByCategory(ctx context.Context, category string, maxResults int) ([]*models.App, error) {
	ids, err := s.apps.IDsByCategory(category)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, maxResults, (*models.App).Listed)
}

// ListByChain listed apps targeting chainID, ascending id
func (s *RegistryService) ListByChain(ctx context.Context, chainID uint64, maxResults int) ([]*models.App, error) {
	ids, err := s.apps.IDsByChain(chainID)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, maxResults, (*models.App).Listed)
}

// ListByDeveloper every app the developer ever submitted, whatever its state
func (s *RegistryService) ListByDeveloper(ctx context.Context, developer models.Account, maxResults int) ([]*models.App, error) {
	ids, err := s.apps.IDsByDeveloper(developer)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, maxResults, nil)
}

// ListPending active apps awaiting review. Order is unspecified.
func (s *RegistryService) ListPending(ctx context.Context, maxResults int) ([]*models.App, error) {
	ids, err := s.pending.List()
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, maxResults, func(app *models.App) bool {
		return app.State == models.AppStatePending
	})
}

// PendingQueue raw queue content, including apps withdrawn while queued
func (s *RegistryService) PendingQueue(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.pending.List()
}

// ListFeatured featured apps that are currently listed, in featuring order
func (s *RegistryService) ListFeatured(ctx context.Context, maxResults int) ([]*models.App, error) {
	ids, err := s.featured.List()
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, ids, maxResults, (*models.App).Listed)
}

// GetScreenshot screenshot at index, ErrOutOfBounds past the stored count
func (s *RegistryService) GetScreenshot(ctx context.Context, id uint64, index int) (string, error) {
	app, err := s.GetApp(ctx, id)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(app.Screenshots) {
		return "", fmt.Errorf("screenshot %d of app %d (%d stored): %w", index, id, len(app.Screenshots), apperrors.ErrOutOfBounds)
	}
	return app.Screenshots[index], nil
}

// AppCount number of apps ever submitted
func (s *RegistryService) AppCount(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.apps.Count(s.db)
}

// IsAdmin admin membership
func (s *RegistryService) IsAdmin(ctx context.Context, account models.Account) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.authz.IsAdmin(account)
}

// Admins current admin set
func (s *RegistryService) Admins(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.admins.List()
}

func (s *RegistryService) collect(ctx context.Context, ids []uint64, maxResults int, keep func(*models.App) bool) ([]*models.App, error) {
	apps := make([]*models.App, 0, len(ids))
	for _, id := range ids {
		if maxResults > 0 && len(apps) >= maxResults {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		app, err := s.loadApp(s.db, id)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(app) {
			apps = append(apps, app)
		}
	}
	return apps, nil
}
