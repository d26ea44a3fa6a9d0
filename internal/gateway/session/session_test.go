package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-gateway/internal/shared/model"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(NewMemoryStore(), Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestCreateAndResolve(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	user := &model.User{ID: 1, Username: "alice", Role: model.RoleCustomer, IsActive: true}
	s, token, err := m.Create(ctx, user, "session=upstream-tok")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "alice", got.User.Username)

	cred, err := m.Credential(got)
	require.NoError(t, err)
	assert.Equal(t, "session=upstream-tok", cred)
}

func TestResolveInvalidToken(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"空 token", ""},
		{"非 JWT", "not-a-jwt"},
		{"签名不匹配", func() string {
			other, err := NewManager(NewMemoryStore(), Config{Secret: "other-secret"})
			require.NoError(t, err)
			_, token, err := other.Create(ctx, &model.User{ID: 2}, "c")
			require.NoError(t, err)
			return token
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Resolve(ctx, tt.token)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDestroy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, token, err := m.Create(ctx, &model.User{ID: 1}, "cred")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, s.ID))

	// Cookie 还在浏览器里，但会话已销毁
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialEncryptedAtRest(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _, err := m.Create(ctx, &model.User{ID: 1}, "session=secret-value")
	require.NoError(t, err)

	// 存储中的凭证不能是明文
	assert.NotContains(t, string(s.EncCredential), "secret-value")

	cred, err := m.Credential(s)
	require.NoError(t, err)
	assert.Equal(t, "session=secret-value", cred)
}

func TestCipherTamperDetection(t *testing.T) {
	c := newCredentialCipher("secret")
	enc, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)

	enc[len(enc)-1] ^= 0xff
	_, err = c.Decrypt(enc)
	assert.Error(t, err)

	_, err = c.Decrypt([]byte("short"))
	assert.Error(t, err)
}

func TestCipherKeySeparation(t *testing.T) {
	a := newCredentialCipher("secret-a")
	b := newCredentialCipher("secret-b")

	enc, err := a.Encrypt([]byte("hello"))
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	assert.Error(t, err, "不同密钥种子不能互相解密")
}

func TestUpdateUser(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, token, err := m.Create(ctx, &model.User{ID: 1, FullName: "Old Name"}, "cred")
	require.NoError(t, err)

	require.NoError(t, m.UpdateUser(ctx, s, &model.User{ID: 1, FullName: "New Name"}))

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.User.FullName)
	assert.False(t, got.SnapshotStale())
}

func TestSnapshotStale(t *testing.T) {
	s := &Session{RefreshedAt: time.Now().Add(-model.UserSnapshotMaxAge - time.Minute)}
	assert.True(t, s.SnapshotStale())

	s.RefreshedAt = time.Now()
	assert.False(t, s.SnapshotStale())
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := &Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, sess, time.Millisecond))

	time.Sleep(5 * time.Millisecond)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(NewMemoryStore(), Config{})
	assert.Error(t, err)
}
