package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ZINSTEM/SoloGym/internal/user/entity"
)

type fakeRunner struct{}

func (fakeRunner) RunTx(ctx context.Context, fn func(ext sqlx.ExtContext) error) error {
	return fn(nil)
}

type fakeStore struct {
	user  *entity.User
	saves int
}

func (f *fakeStore) Get(_ context.Context, id string) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeStore) GetForUpdate(_ context.Context, _ sqlx.ExtContext, id string) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeStore) SaveAttributes(_ context.Context, _ sqlx.ExtContext, u *entity.User) error {
	f.saves++
	u.Version++
	return nil
}

func (f *fakeStore) UpdateDisplayName(_ context.Context, id, displayName string) (*entity.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	f.user.DisplayName = displayName
	cp := *f.user
	return &cp, nil
}

type fakeHistory struct {
	snapshots []entity.AttributeSnapshot
}

func (f *fakeHistory) Append(_ context.Context, _ sqlx.ExtContext, userID string, attrs entity.Attributes, at time.Time) error {
	f.snapshots = append(f.snapshots, entity.AttributeSnapshot{
		ID:         int64(len(f.snapshots) + 1),
		UserID:     userID,
		Strength:   attrs.Strength,
		Endurance:  attrs.Endurance,
		Agility:    attrs.Agility,
		Vitality:   attrs.Vitality,
		RecordedAt: at,
	})
	return nil
}

func (f *fakeHistory) ListRecent(_ context.Context, userID string, limit int) ([]entity.AttributeSnapshot, error) {
	var out []entity.AttributeSnapshot
	for i := len(f.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		if f.snapshots[i].UserID == userID {
			out = append(out, f.snapshots[i])
		}
	}
	return out, nil
}

func newTestHunter() *entity.User {
	return &entity.User{
		ID:              "hunter-1",
		Email:           "hunter@example.com",
		DisplayName:     "Hunter",
		Level:           3,
		XPToNextLevel:   337,
		AvailablePoints: 6,
		Badges:          []string{},
		Version:         1,
	}
}

func newTestService(store *fakeStore, history *fakeHistory) *Service {
	return NewService(fakeRunner{}, store, history, zap.NewNop().Sugar())
}

func TestAllocateSpendsPoints(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	u, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{Strength: 2, Vitality: 1})
	require.NoError(t, err)

	require.Equal(t, 2, u.Attributes.Strength)
	require.Equal(t, 1, u.Attributes.Vitality)
	require.Equal(t, 3, u.AvailablePoints)
	require.Len(t, history.snapshots, 1)
	require.Equal(t, 2, history.snapshots[0].Strength)
}

func TestAllocateExactBudgetDrivesPointsToZero(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	u, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{
		Strength: 2, Endurance: 2, Agility: 1, Vitality: 1,
	})
	require.NoError(t, err)

	require.Equal(t, 0, u.AvailablePoints)
	require.Equal(t, 6, u.Attributes.Total())
	require.Len(t, history.snapshots, 1, "exactly one snapshot per successful allocation")
}

func TestAllocateInsufficientPoints(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	_, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{Strength: 7})
	require.ErrorIs(t, err, ErrInsufficientPoints)

	// attributes and history untouched on rejection
	require.Equal(t, 0, store.user.Attributes.Total())
	require.Equal(t, 6, store.user.AvailablePoints)
	require.Equal(t, 0, store.saves)
	require.Empty(t, history.snapshots)
}

func TestAllocateRejectsNegativeDelta(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	// a negative component would refund points into the budget
	_, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{Strength: 3, Endurance: -2})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 0, store.saves)
	require.Empty(t, history.snapshots)
}

func TestAllocateZeroTotalStillSnapshots(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	u, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{})
	require.NoError(t, err)

	require.Equal(t, 6, u.AvailablePoints)
	require.Len(t, history.snapshots, 1, "zero-total spend is legal and still snapshots")
}

func TestAllocateUnknownUser(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeHistory{})

	_, err := svc.Allocate(context.Background(), "nobody", entity.AttributeDelta{Strength: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttributeHistoryOldestFirst(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	for i := 0; i < 3; i++ {
		_, err := svc.Allocate(context.Background(), "hunter-1", entity.AttributeDelta{Strength: 1})
		require.NoError(t, err)
	}

	snaps, err := svc.AttributeHistory(context.Background(), "hunter-1", 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// the two most recent, presented oldest first
	require.Equal(t, 2, snaps[0].Strength)
	require.Equal(t, 3, snaps[1].Strength)
}

func TestAttributeHistoryDefaultLimit(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	history := &fakeHistory{}
	svc := newTestService(store, history)

	snaps, err := svc.AttributeHistory(context.Background(), "hunter-1", 0)
	require.NoError(t, err)
	require.Empty(t, snaps)
}

func TestProfileNeverSerializesCredentials(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	store.user.PasswordHash = "bcrypt-secret"
	svc := newTestService(store, &fakeHistory{})

	u, err := svc.Profile(context.Background(), "hunter-1")
	require.NoError(t, err)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(data), "bcrypt-secret")
	require.NotContains(t, string(data), "password")
}

func TestUpdateProfileDisplayName(t *testing.T) {
	store := &fakeStore{user: newTestHunter()}
	svc := newTestService(store, &fakeHistory{})

	u, err := svc.UpdateProfile(context.Background(), "hunter-1", "Shadow Monarch")
	require.NoError(t, err)
	require.Equal(t, "Shadow Monarch", u.DisplayName)
}
