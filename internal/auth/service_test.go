package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/granary/granary/internal/shared"
)

type memRepo struct {
	users     map[int64]*User
	registers []bool
	logins    []bool
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[int64]*User)}
}

func (m *memRepo) FindByPhone(_ context.Context, phone string) (*User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) FindByOpenID(_ context.Context, openid string) (*User, error) {
	for _, u := range m.users {
		if u.OpenID == openid {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memRepo) BindRegistration(_ context.Context, userID int64, openid, passcodeHash string) error {
	u := m.users[userID]
	u.OpenID = openid
	u.PasscodeHash = passcodeHash
	u.Status = StatusRegistered
	return nil
}

func (m *memRepo) RecordLogin(_ context.Context, _ int64, _, _ string, success bool) error {
	m.logins = append(m.logins, success)
	return nil
}

func (m *memRepo) RecordRegister(_ context.Context, _, _, _ string, success bool, _ int64) error {
	m.registers = append(m.registers, success)
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *TokenManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenManager(client, time.Hour)
	repo := newMemRepo()
	return NewService(repo, tokens, slog.Default()), repo, tokens
}

func TestRegisterBindsProvisionedAccount(t *testing.T) {
	svc, repo, tokens := newTestService(t)
	repo.users[1] = &User{ID: 1, Name: "张三", Phone: "13800138000", Status: StatusActive}

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Phone:    "13800138000",
		OpenID:   "oABC123",
		Passcode: "1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, StatusRegistered, user.Status)
	require.Equal(t, "oABC123", repo.users[1].OpenID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[1].PasscodeHash), []byte("1234")))
	require.Equal(t, []bool{true}, repo.registers)

	userID, err := tokens.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(1), userID)
}

func TestRegisterRejectsUnknownPhone(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Phone:    "13900000000",
		OpenID:   "oX",
		Passcode: "1234",
	})
	require.ErrorIs(t, err, ErrPhoneNotProvisioned)
	require.Equal(t, []bool{false}, repo.registers)
}

func TestRegisterRejectsNonActiveStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.users[1] = &User{ID: 1, Phone: "13800138000", Status: StatusFrozen}

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Phone:    "13800138000",
		OpenID:   "oX",
		Passcode: "1234",
	})
	require.ErrorIs(t, err, ErrCannotRegister)
}

func TestIssueTokenHappyPath(t *testing.T) {
	svc, repo, _ := newTestService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users[7] = &User{ID: 7, Name: "李四", OpenID: "oDEF", PasscodeHash: string(hash), Status: StatusRegistered}

	user, token, err := svc.IssueToken(context.Background(), LoginInput{OpenID: "oDEF", Passcode: "1234"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, []bool{true}, repo.logins)
}

func TestIssueTokenRejectsWrongPasscode(t *testing.T) {
	svc, repo, _ := newTestService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users[7] = &User{ID: 7, OpenID: "oDEF", PasscodeHash: string(hash), Status: StatusRegistered}

	_, _, err = svc.IssueToken(context.Background(), LoginInput{OpenID: "oDEF", Passcode: "9999"})
	require.ErrorIs(t, err, ErrBadPasscode)
	require.Equal(t, []bool{false}, repo.logins)
}

func TestIssueTokenRejectsUnknownOpenID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.IssueToken(context.Background(), LoginInput{OpenID: "nobody", Passcode: "1234"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestIdentifyResolvesTokenToUser(t *testing.T) {
	svc, repo, tokens := newTestService(t)
	repo.users[3] = &User{ID: 3, Name: "王五", Status: StatusRegistered}

	token, err := tokens.Issue(context.Background(), 3)
	require.NoError(t, err)

	user, err := svc.Identify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "王五", user.Name)

	_, err = svc.Identify(context.Background(), "bogus")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestResolveExpiredToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenManager(client, time.Minute)

	token, err := tokens.Issue(context.Background(), 9)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = tokens.Resolve(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
