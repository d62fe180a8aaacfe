package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/abduss/filegate/internal/config"
	"github.com/abduss/filegate/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestPool connects to the database described by the POSTGRES_* variables
// and skips the test when none is configured or reachable.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set; skipping metadata store tests")
	}
	for key, val := range map[string]string{
		"OBJECT_STORE_BUCKET":     "uploads",
		"OBJECT_STORE_ACCESS_KEY": "access",
		"OBJECT_STORE_SECRET_KEY": "secret",
		"IDENTITY_HMAC_SECRET":    "shared-secret",
	} {
		if _, ok := os.LookupEnv(key); !ok {
			t.Setenv(key, val)
		}
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, storage.EnsureSchema(ctx, pool))
	// second run must be a no-op
	require.NoError(t, storage.EnsureSchema(ctx, pool))
	return pool
}

func newStoredRecord(uid, name string, size *int64) NewRecord {
	return NewRecord{
		UID:           uid,
		UserStorageID: UserStorageID(uid),
		Bucket:        "uploads",
		ObjectKey:     ObjectKey(UserStorageID(uid), uuid.NewString(), name),
		OriginalName:  name,
		MimeType:      "text/plain",
		Size:          size,
	}
}

func createStored(t *testing.T, repo *Repository, in NewRecord) Record {
	t.Helper()
	rec, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(context.Background(), rec.ID) })
	return rec
}

func TestRepositoryCreateRoundTripsSize(t *testing.T) {
	repo := NewRepository(openTestPool(t))
	ctx := context.Background()
	uid := "user-" + uuid.NewString()

	sized := createStored(t, repo, newStoredRecord(uid, "a.txt", int64Ptr(42)))
	unsized := createStored(t, repo, newStoredRecord(uid, "b.txt", nil))

	assert.NotEqual(t, uuid.Nil, sized.ID)
	assert.False(t, sized.CreatedAt.IsZero())
	assert.Equal(t, UserStorageID(uid), sized.UserStorageID)

	got, err := repo.GetByID(ctx, sized.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Size)
	assert.EqualValues(t, 42, *got.Size)

	got, err = repo.GetByID(ctx, unsized.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Size)
}

func TestRepositoryRejectsDuplicateObjectKey(t *testing.T) {
	repo := NewRepository(openTestPool(t))
	uid := "user-" + uuid.NewString()

	in := newStoredRecord(uid, "dup.txt", nil)
	createStored(t, repo, in)

	_, err := repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrObjectKeyExists)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestRepositoryListByOwnerIsScoped(t *testing.T) {
	repo := NewRepository(openTestPool(t))
	owner := "user-" + uuid.NewString()
	other := "user-" + uuid.NewString()

	first := createStored(t, repo, newStoredRecord(owner, "first.txt", nil))
	time.Sleep(10 * time.Millisecond)
	second := createStored(t, repo, newStoredRecord(owner, "second.txt", nil))
	createStored(t, repo, newStoredRecord(other, "theirs.txt", nil))

	records, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, owner, rec.UID)
	}

	empty, err := repo.ListByOwner(context.Background(), "user-"+uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	listed, err := NewService(repo, newFakeObjects(), "uploads").List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestRepositoryFindByOwnerAndKey(t *testing.T) {
	repo := NewRepository(openTestPool(t))
	ctx := context.Background()
	owner := "user-" + uuid.NewString()

	rec := createStored(t, repo, newStoredRecord(owner, "mine.txt", nil))

	found, err := repo.FindByOwnerAndKey(ctx, owner, rec.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)

	_, err = repo.FindByOwnerAndKey(ctx, "user-"+uuid.NewString(), rec.ObjectKey)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = repo.FindByOwnerAndKey(ctx, owner, "no/such-key")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRepositoryGetByIDAndDelete(t *testing.T) {
	repo := NewRepository(openTestPool(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFileNotFound)

	rec := createStored(t, repo, newStoredRecord("user-"+uuid.NewString(), "gone.txt", nil))

	require.NoError(t, repo.Delete(ctx, rec.ID))
	_, err = repo.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// already gone
	assert.NoError(t, repo.Delete(ctx, rec.ID))
}

func TestRepositoryWriteProbe(t *testing.T) {
	repo := NewRepository(openTestPool(t))

	id, err := repo.WriteProbe(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRepositoryWrapsClosedPoolErrors(t *testing.T) {
	pool := openTestPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()
	pool.Close()

	_, err := repo.Create(ctx, newStoredRecord("user-"+uuid.NewString(), "x.txt", nil))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = repo.ListByOwner(ctx, "anyone")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = repo.FindByOwnerAndKey(ctx, "anyone", "k")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrStoreUnavailable)

	_, err = repo.WriteProbe(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
