// Package auth implements the mini-program identity flow: phone-based
// registration gated on pre-provisioned accounts, openid+passcode token
// issuance, and bearer-token resolution for request authentication.
package auth

import (
	"time"

	"github.com/granary/granary/internal/shared"
)

// Status enumerates account lifecycle states.
type Status string

const (
	// StatusActive is a provisioned account that has not registered yet.
	StatusActive Status = "active"
	// StatusRegistered is an account bound to an openid and passcode.
	StatusRegistered Status = "registered"
	// StatusFrozen blocks both registration and login.
	StatusFrozen Status = "frozen"
	// StatusDeleted is a soft-deleted account.
	StatusDeleted Status = "deleted"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusRegistered, StatusFrozen, StatusDeleted:
		return true
	}
	return false
}

// User is one account row.
type User struct {
	ID           int64
	Name         string
	Phone        string
	OpenID       string
	PasscodeHash string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrPhoneNotProvisioned rejects registration for unknown phones.
	ErrPhoneNotProvisioned = shared.Safe("手机号未在系统中登记")
	// ErrCannotRegister rejects registration for non-active accounts.
	ErrCannotRegister = shared.Safe("该账号不可注册")
	// ErrUserNotFound rejects token requests for unknown openids.
	ErrUserNotFound = shared.Safe("未找到用户")
	// ErrBadStatus rejects token requests for accounts not registered.
	ErrBadStatus = shared.Safe("账号状态异常")
	// ErrBadPasscode rejects token requests with a wrong passcode.
	ErrBadPasscode = shared.Safe("passcode 不正确")
)
