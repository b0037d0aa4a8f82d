// Package users covers profile reads, passcode changes, and the admin-only
// account management endpoints.
package users

import (
	"regexp"
	"time"

	"github.com/granary/granary/internal/shared"
)

// User mirrors one account row for management views.
type User struct {
	ID        int64
	Name      string
	Phone     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput provisions a new account in the active state.
type CreateInput struct {
	Name  string
	Phone string
}

// UpdateInput patches an existing account. Nil fields are left unchanged.
type UpdateInput struct {
	Name   *string
	Phone  *string
	Status *string
}

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// ValidPhone reports whether phone is a plausible mainland mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

var (
	// ErrBadPhone rejects malformed phone numbers.
	ErrBadPhone = shared.Safe("手机号格式错误")
	// ErrPhoneTaken rejects duplicate phone numbers.
	ErrPhoneTaken = shared.Safe("该手机号已存在")
	// ErrUserNotFound rejects updates against missing accounts.
	ErrUserNotFound = shared.Safe("未找到用户")
	// ErrBadOldPasscode rejects passcode changes with a wrong current passcode.
	ErrBadOldPasscode = shared.Safe("原 passcode 不正确")
	// ErrBadStatusValue rejects unknown status values.
	ErrBadStatusValue = shared.Safe("无效的账号状态")
)
