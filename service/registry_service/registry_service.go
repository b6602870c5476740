package registry_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/models/dao"
	"github.com/varity-labs/varity-app-store/service/apperrors"
	"github.com/varity-labs/varity-app-store/service/authz"
	"github.com/varity-labs/varity-app-store/service/event_service"
	"github.com/varity-labs/varity-app-store/service/validation"
)

var log = common.NewLog("registry")

// RegistryService app lifecycle registry. Mutations are serialized; every mutation
// commits as one batch and emits its fact only after the commit.
type RegistryService struct {
	mu sync.Mutex

	db       database.Database
	apps     *dao.AppDAO
	pending  *dao.PendingDAO
	featured *dao.FeaturedDAO
	admins   *dao.AdminDAO

	authz  *authz.Context
	rules  *validation.Rules
	events *event_service.Emitter

	now func() time.Time
}

// NewRegistryService create registry service instance
func NewRegistryService(db database.Database, ac *authz.Context, rules *validation.Rules, events *event_service.Emitter) *RegistryService {
	return &RegistryService{
		db:       db,
		apps:     dao.NewAppDAO(db),
		pending:  dao.NewPendingDAO(db),
		featured: dao.NewFeaturedDAO(db),
		admins:   dao.NewAdminDAO(db),
		authz:    ac,
		rules:    rules,
		events:   events,
		now:      time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (s *RegistryService) SetClock(now func() time.Time) {
	s.now = now
}

// apply stages fn in one batch and commits it, discarding everything on error
func (s *RegistryService) apply(fn func(b database.Batch) error) error {
	b := s.db.NewBatch()
	defer b.Discard()
	if err := fn(b); err != nil {
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *RegistryService) emit(ctx context.Context, typ models.EventType, appID uint64, actor models.Account, payload map[string]interface{}) {
	s.events.Emit(ctx, models.NewEvent(typ, appID, actor, payload, s.now()))
}

// loadApp maps a missing record to ErrNotFound. A record without a developer does not exist.
func (s *RegistryService) loadApp(r database.Reader, id uint64) (*models.App, error) {
	app, err := s.apps.Get(r, id)
	if errors.Is(err, database.ErrNotFound) || (err == nil && app.Developer.IsZero()) {
		return nil, fmt.Errorf("app %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load app %d: %w", id, err)
	}
	return app, nil
}

// Initialize makes caller the sole admin. Later calls are no-ops.
func (s *RegistryService) Initialize(ctx context.Context, caller models.Account) (err error) {
	defer func() { common.MetricOperation("registry", "initialize", err) }()
	if caller.IsZero() {
		return fmt.Errorf("deployer account is empty: %w", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.admins.IsInitialized(s.db)
	if err != nil {
		return err
	}
	if done {
		log.Debug("registry already initialized", "caller", caller)
		return nil
	}

	err = s.apply(func(b database.Batch) error {
		if err := s.admins.Add(b, caller); err != nil {
			return err
		}
		return s.admins.MarkInitialized(b)
	})
	if err != nil {
		return err
	}

	log.Info("registry initialized", "admin", caller)
	s.emit(ctx, models.EventAdminAdded, 0, caller, map[string]interface{}{"admin": caller})
	return nil
}

// Submit registers a new app in the pending state and returns its id
func (s *RegistryService) Submit(ctx context.Context, caller models.Account, req *validation.Submission) (id uint64, err error) {
	defer func() { common.MetricOperation("registry", "submit", err) }()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if caller.IsZero() {
		return 0, fmt.Errorf("developer account is empty: %w", apperrors.ErrInvalidInput)
	}
	if err := s.rules.ValidateSubmission(req); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	var app *models.App
	err = s.apply(func(b database.Batch) error {
		next, err := s.apps.NextID(b)
		if err != nil {
			return err
		}
		app = &models.App{
			ID:                next,
			Name:              req.Name,
			Category:          req.Category,
			ChainID:           req.ChainID,
			LogoURL:           req.LogoURL,
			RepoURL:           req.RepoURL,
			Tier:              req.Tier,
			Developer:         caller,
			BuiltWithPlatform: req.BuiltWithPlatform,
			CreatedAt:         now,
			Description:       req.Description,
			AppURL:            req.AppURL,
			Screenshots:       append([]string(nil), req.Screenshots...),
			State:             models.AppStatePending,
			UpdatedAt:         now,
		}
		if err := s.apps.Create(b, app); err != nil {
			return err
		}
		return s.pending.Add(b, app.ID)
	})
	if err != nil {
		return 0, err
	}

	log.Info("app submitted", "id", app.ID, "name", app.Name, "developer", caller)
	s.emit(ctx, models.EventAppRegistered, app.ID, caller, map[string]interface{}{
		"name":     app.Name,
		"category": app.Category,
		"chain_id": app.ChainID,
	})
	return app.ID, nil
}

// Approve admin approval; removes the app from the pending queue
func (s *RegistryService) Approve(ctx context.Context, caller models.Account, id uint64) (err error) {
	defer func() { common.MetricOperation("registry", "approve", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	app, err := s.loadApp(s.db, id)
	if err != nil {
		return err
	}
	next, ok := app.State.Next(models.TransitionApprove)
	if app.IsApproved() || !ok {
		return fmt.Errorf("app %d is %s: %w", id, app.State, apperrors.ErrAlreadyApproved)
	}

	err = s.apply(func(b database.Batch) error {
		app.State = next
		app.UpdatedAt = s.now().Unix()
		if err := s.apps.Put(b, app); err != nil {
			return err
		}
		_, err := s.pending.Remove(b, id)
		return err
	})
	if err != nil {
		return err
	}

	log.Info("app approved", "id", id, "admin", caller, "state", app.State)
	s.emit(ctx, models.EventAppApproved, id, caller, map[string]interface{}{"state": app.State.String()})
	return nil
}

// Reject admin rejection; forces the app inactive and unapproved. Rejecting again is accepted.
// A rejected app also leaves the featured list, which only holds approved apps.
func (s *RegistryService) Reject(ctx context.Context, caller models.Account, id uint64, reason string) (err error) {
	defer func() { common.MetricOperation("registry", "reject", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	app, err := s.loadApp(s.db, id)
	if err != nil {
		return err
	}
	next, _ := app.State.Next(models.TransitionReject)

	var unfeatured bool
	err = s.apply(func(b database.Batch) error {
		app.State = next
		app.UpdatedAt = s.now().Unix()
		if err := s.apps.Put(b, app); err != nil {
			return err
		}
		if _, err := s.pending.Remove(b, id); err != nil {
			return err
		}
		var err error
		unfeatured, err = s.featured.Remove(b, id)
		return err
	})
	if err != nil {
		return err
	}

	log.Info("app rejected", "id", id, "admin", caller, "reason", reason)
	s.emit(ctx, models.EventAppRejected, id, caller, map[string]interface{}{
		"reason":     reason,
		"unfeatured": unfeatured,
	})
	return nil
}

// Update overwrites the developer-mutable fields. Only the app's developer may call it.
func (s *RegistryService) Update(ctx context.Context, caller models.Account, id uint64, description, appURL string, screenshots []string) (err error) {
	defer func() { common.MetricOperation("registry", "update", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.loadApp(s.db, id)
	if err != nil {
		return err
	}
	if err := authz.RequireSelf(caller, app.Developer, fmt.Sprintf("developer of app %d", id)); err != nil {
		return err
	}
	if err := validation.ValidateUpdate(description, appURL, screenshots); err != nil {
		return err
	}

	err = s.apply(func(b database.Batch) error {
		app.Description = description
		app.AppURL = appURL
		app.Screenshots = append([]string(nil), screenshots...)
		app.UpdatedAt = s.now().Unix()
		return s.apps.Put(b, app)
	})
	if err != nil {
		return err
	}

	log.Info("app updated", "id", id, "developer", caller)
	s.emit(ctx, models.EventAppUpdated, id, caller, map[string]interface{}{
		"app_url":     appURL,
		"screenshots": len(screenshots),
	})
	return nil
}

// Deactivate developer deactivation. Approval is kept; calling it again succeeds.
func (s *RegistryService) Deactivate(ctx context.Context, caller models.Account, id uint64) (err error) {
	defer func() { common.MetricOperation("registry", "deactivate", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.loadApp(s.db, id)
	if err != nil {
		return err
	}
	if err := authz.RequireSelf(caller, app.Developer, fmt.Sprintf("developer of app %d", id)); err != nil {
		return err
	}
	next, _ := app.State.Next(models.TransitionDeactivate)

	err = s.apply(func(b database.Batch) error {
		app.State = next
		app.UpdatedAt = s.now().Unix()
		return s.apps.Put(b, app)
	})
	if err != nil {
		return err
	}

	log.Info("app deactivated", "id", id, "developer", caller, "state", app.State)
	s.emit(ctx, models.EventAppDeactivated, id, caller, map[string]interface{}{"state": app.State.String()})
	return nil
}

// Feature adds an approved app to the featured list. Featuring twice is a no-op.
func (s *RegistryService) Feature(ctx context.Context, caller models.Account, id uint64) (err error) {
	defer func() { common.MetricOperation("registry", "feature", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	app, err := s.loadApp(s.db, id)
	if err != nil {
		return err
	}
	if !app.IsApproved() {
		return fmt.Errorf("app %d is %s: %w", id, app.State, apperrors.ErrNotApproved)
	}

	var added bool
	err = s.apply(func(b database.Batch) error {
		var err error
		added, err = s.featured.Add(b, id)
		return err
	})
	if err != nil || !added {
		return err
	}

	log.Info("app featured", "id", id, "admin", caller)
	s.emit(ctx, models.EventAppFeatured, id, caller, nil)
	return nil
}

// Unfeature removes an app from the featured list. Removing an absent entry is a no-op.
func (s *RegistryService) Unfeature(ctx context.Context, caller models.Account, id uint64) (err error) {
	defer func() { common.MetricOperation("registry", "unfeature", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.loadApp(s.db, id); err != nil {
		return err
	}

	var removed bool
	err = s.apply(func(b database.Batch) error {
		var err error
		removed, err = s.featured.Remove(b, id)
		return err
	})
	if err != nil || !removed {
		return err
	}

	log.Info("app unfeatured", "id", id, "admin", caller)
	s.emit(ctx, models.EventAppUnfeatured, id, caller, nil)
	return nil
}

// AddAdmin grants admin to account
func (s *RegistryService) AddAdmin(ctx context.Context, caller, account models.Account) (err error) {
	defer func() { common.MetricOperation("registry", "add_admin", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	if account.IsZero() {
		return fmt.Errorf("admin account is empty: %w", apperrors.ErrInvalidInput)
	}
	already, err := s.admins.IsAdmin(s.db, account)
	if err != nil || already {
		return err
	}

	if err := s.apply(func(b database.Batch) error { return s.admins.Add(b, account) }); err != nil {
		return err
	}

	log.Info("admin added", "admin", account, "by", caller)
	s.emit(ctx, models.EventAdminAdded, 0, caller, map[string]interface{}{"admin": account})
	return nil
}

// RemoveAdmin revokes admin from account. The last admin may remove itself, which leaves
// review operations permanently locked.
func (s *RegistryService) RemoveAdmin(ctx context.Context, caller, account models.Account) (err error) {
	defer func() { common.MetricOperation("registry", "remove_admin", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authz.RequireAdmin(caller); err != nil {
		return err
	}
	member, err := s.admins.IsAdmin(s.db, account)
	if err != nil || !member {
		return err
	}

	if err := s.apply(func(b database.Batch) error { return s.admins.Remove(b, account) }); err != nil {
		return err
	}

	log.Info("admin removed", "admin", account, "by", caller)
	if admins, err := s.admins.List(); err == nil && len(admins) == 0 {
		log.Warn("admin set is empty, review operations are locked")
	}
	s.emit(ctx, models.EventAdminRemoved, 0, caller, map[string]interface{}{"admin": account})
	return nil
}
