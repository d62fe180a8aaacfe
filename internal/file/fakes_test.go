package file

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	records   map[uuid.UUID]Record
	clock     time.Time
	err       error
	createErr error
	deleted   []uuid.UUID
	calls     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records: make(map[uuid.UUID]Record),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) Create(ctx context.Context, in NewRecord) (Record, error) {
	f.calls++
	if f.createErr != nil {
		return Record{}, f.createErr
	}
	for _, r := range f.records {
		if r.ObjectKey == in.ObjectKey {
			return Record{}, ErrObjectKeyExists
		}
	}
	f.clock = f.clock.Add(time.Second)
	rec := Record{
		ID:            uuid.New(),
		UID:           in.UID,
		UserStorageID: in.UserStorageID,
		Bucket:        in.Bucket,
		ObjectKey:     in.ObjectKey,
		OriginalName:  in.OriginalName,
		MimeType:      in.MimeType,
		Size:          in.Size,
		CreatedAt:     f.clock,
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, uid string) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var list []Record
	for _, r := range f.records {
		if r.UID == uid {
			list = append(list, r)
		}
	}
	return list, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	list := make([]Record, 0, len(f.records))
	for _, r := range f.records {
		list = append(list, r)
	}
	return list, nil
}

func (f *fakeRepo) FindByOwnerAndKey(ctx context.Context, uid, objectKey string) (Record, error) {
	f.calls++
	if f.err != nil {
		return Record{}, f.err
	}
	for _, r := range f.records {
		if r.UID == uid && r.ObjectKey == objectKey {
			return r, nil
		}
	}
	return Record{}, ErrFileNotFound
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	f.calls++
	if f.err != nil {
		return Record{}, f.err
	}
	r, ok := f.records[id]
	if !ok {
		return Record{}, ErrFileNotFound
	}
	return r, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	delete(f.records, id)
	return nil
}

type fakeObjects struct {
	present   map[string]bool
	err       error
	deleteErr error
	uploads   []string
	downloads []string
	removed   []string
	probes    int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{present: make(map[string]bool)}
}

func (f *fakeObjects) calls() int {
	return len(f.uploads) + len(f.downloads) + len(f.removed) + f.probes
}

func (f *fakeObjects) UploadURL(ctx context.Context, bucket, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, key)
	return "https://store.example.com/" + bucket + "/" + key + "?op=put&type=" + contentType, nil
}

func (f *fakeObjects) DownloadURL(ctx context.Context, bucket, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.downloads = append(f.downloads, key)
	return "https://store.example.com/" + bucket + "/" + key + "?op=get", nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, bucket, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.removed = append(f.removed, key)
	delete(f.present, key)
	return nil
}

func (f *fakeObjects) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	f.probes++
	if f.err != nil {
		return false, f.err
	}
	if strings.Contains(key, "broken") {
		return false, context.DeadlineExceeded
	}
	return f.present[key], nil
}
