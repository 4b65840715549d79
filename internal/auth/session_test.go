package auth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/takes-and-tastes/internal/client"
	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	result *client.AuthResult
	user   *domain.User
	err    error
}

func (m *mockAuthenticator) Register(context.Context, client.Registration) (*client.AuthResult, error) {
	return m.result, m.err
}

func (m *mockAuthenticator) Login(context.Context, string, string) (*client.AuthResult, error) {
	return m.result, m.err
}

func (m *mockAuthenticator) UpdateProfile(context.Context, client.ProfileUpdate) (*domain.User, error) {
	return m.user, m.err
}

func setupSession(t *testing.T) (*Session, storage.KV, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	kv := storage.NewRedisKV(rdb, "")
	return NewSession(kv), kv, mr
}

var ayesha = domain.User{ID: "u1", Name: "Ayesha", Email: "ayesha@example.com"}

func TestLogin_PersistsCredentials(t *testing.T) {
	s, kv, mr := setupSession(t)
	ctx := context.Background()

	user, err := s.Login(ctx, &mockAuthenticator{result: &client.AuthResult{Token: "tok", User: ayesha}}, "ayesha@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	token, _ := s.Token(ctx)
	assert.Equal(t, "tok", token)

	stored, err := mr.Get(storage.KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)

	restored := NewSession(kv)
	require.NoError(t, restored.Restore(ctx))
	got, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, ayesha, got)
}

func TestLogin_FailureStoresNothing(t *testing.T) {
	s, _, mr := setupSession(t)

	_, err := s.Login(context.Background(), &mockAuthenticator{err: &domain.RemoteError{StatusCode: 401, Message: "Invalid credentials"}}, "x", "y")
	assert.ErrorIs(t, err, domain.ErrRemoteRejection)
	assert.False(t, mr.Exists(storage.KeyUserToken))
	_, ok := s.User()
	assert.False(t, ok)
}

func TestRestore_TokenWithoutUserIsLoggedOut(t *testing.T) {
	s, _, mr := setupSession(t)
	require.NoError(t, mr.Set(storage.KeyUserToken, "tok"))

	require.NoError(t, s.Restore(context.Background()))
	_, ok := s.User()
	assert.False(t, ok)
}

func TestRestore_UnreadableUser(t *testing.T) {
	s, _, mr := setupSession(t)
	require.NoError(t, mr.Set(storage.KeyUserToken, "tok"))
	require.NoError(t, mr.Set(storage.KeyUserData, "{not json"))

	require.NoError(t, s.Restore(context.Background()))
	token, _ := s.Token(context.Background())
	assert.Empty(t, token)
}

func TestClear(t *testing.T) {
	s, _, mr := setupSession(t)
	ctx := context.Background()
	_, err := s.Register(ctx, &mockAuthenticator{result: &client.AuthResult{Token: "tok", User: ayesha}}, client.Registration{Name: "Ayesha"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, mr.Exists(storage.KeyUserToken))
	assert.False(t, mr.Exists(storage.KeyUserData))
	token, _ := s.Token(ctx)
	assert.Empty(t, token)
}

func TestUpdateProfile(t *testing.T) {
	s, _, mr := setupSession(t)
	ctx := context.Background()

	_, err := s.UpdateProfile(ctx, &mockAuthenticator{}, client.ProfileUpdate{Name: "A"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = s.Login(ctx, &mockAuthenticator{result: &client.AuthResult{Token: "tok", User: ayesha}}, "", "")
	require.NoError(t, err)

	updated := ayesha
	updated.Phone = "0300-1234567"
	user, err := s.UpdateProfile(ctx, &mockAuthenticator{user: &updated}, client.ProfileUpdate{Phone: updated.Phone})
	require.NoError(t, err)
	assert.Equal(t, "0300-1234567", user.Phone)

	raw, err := mr.Get(storage.KeyUserData)
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "0300-1234567", stored.Phone)
}
