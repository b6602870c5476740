// Package authz authorization context injected into the registry and the ledger.
// Membership lives in durable storage; nothing is cached in process globals.
package authz

import (
	"fmt"

	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/models/dao"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

// Context answers role questions against committed state
type Context struct {
	db     database.Database
	admins *dao.AdminDAO
	ledger *dao.LedgerDAO
}

// NewContext create authorization context
func NewContext(db database.Database) *Context {
	return &Context{
		db:     db,
		admins: dao.NewAdminDAO(db),
		ledger: dao.NewLedgerDAO(db),
	}
}

// IsAdmin registry admin membership
func (c *Context) IsAdmin(account models.Account) (bool, error) {
	return c.admins.IsAdmin(c.db, account)
}

// IsOwner ledger ownership
func (c *Context) IsOwner(account models.Account) (bool, error) {
	if account.IsZero() {
		return false, nil
	}
	owner, err := c.ledger.Owner(c.db)
	if err != nil {
		return false, err
	}
	return owner == account, nil
}

// RequireAdmin returns ErrUnauthorized unless account is an admin
func (c *Context) RequireAdmin(account models.Account) error {
	ok, err := c.IsAdmin(account)
	if err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s is not an admin: %w", account, apperrors.ErrUnauthorized)
	}
	return nil
}

// RequireOwner returns ErrUnauthorized unless account owns the ledger
func (c *Context) RequireOwner(account models.Account) error {
	ok, err := c.IsOwner(account)
	if err != nil {
		return fmt.Errorf("failed to check owner: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s is not the owner: %w", account, apperrors.ErrUnauthorized)
	}
	return nil
}

// RequireSelf returns ErrUnauthorized unless caller is the expected account.
// Admin membership grants nothing here.
func RequireSelf(caller, expected models.Account, what string) error {
	if caller.IsZero() || caller != expected {
		return fmt.Errorf("%s is not the %s: %w", caller, what, apperrors.ErrUnauthorized)
	}
	return nil
}
