package users

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/devconnector-go/auth"
	"github.com/user/devconnector-go/avatar"
	"github.com/user/devconnector-go/config"
)

const testSecret = "test-secret"

// countingStore wraps a Store, counting calls and optionally injecting failures.
type countingStore struct {
	Store
	finds, inserts atomic.Int32
	findErr        error
	insertErr      error
}

func (s *countingStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.finds.Add(1)
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.Store.FindByEmail(ctx, email)
}

func (s *countingStore) Insert(ctx context.Context, u *User) error {
	s.inserts.Add(1)
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.Store.Insert(ctx, u)
}

type failingIssuer struct{ auth.TokenIssuer }

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("signing key unavailable") }

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error)   { return "", errors.New("entropy exhausted") }
func (failingHasher) Compare(string, string) error { return errors.New("unreachable") }

type recordingRecorder struct{ outcomes []string }

func (r *recordingRecorder) ObserveRegistration(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

type fixture struct {
	memory   *MemoryStore
	store    *countingStore
	issuer   *auth.JWTIssuer
	hasher   *auth.BcryptHasher
	recorder *recordingRecorder
	deps     Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	issuer, err := auth.NewJWTIssuer(config.AuthConfig{
		JWTSecret:     testSecret,
		TokenDuration: config.DefaultTokenDuration,
	})
	require.NoError(t, err)
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	memory := NewMemoryStore()
	store := &countingStore{Store: memory}
	recorder := &recordingRecorder{}
	return &fixture{
		memory:   memory,
		store:    store,
		issuer:   issuer,
		hasher:   hasher,
		recorder: recorder,
		deps: Deps{
			Store:    store,
			Avatars:  avatar.NewGenerator(avatar.DefaultOptions),
			Hasher:   hasher,
			Tokens:   issuer,
			Recorder: recorder,
			Logger:   zap.NewNop(),
		},
	}
}

func (f *fixture) service() *UserService {
	return NewUserService(f.deps)
}
