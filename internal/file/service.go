package file

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type metadataStore interface {
	Create(ctx context.Context, in NewRecord) (Record, error)
	ListByOwner(ctx context.Context, uid string) ([]Record, error)
	FindByOwnerAndKey(ctx context.Context, uid, objectKey string) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type objectGateway interface {
	UploadURL(ctx context.Context, bucket, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, bucket, key string) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// Service mediates uploads and downloads between clients, the object store and the metadata store.
// Every call into a store is sequential and errors are returned to the caller unchanged in kind.
type Service struct {
	repo         metadataStore
	objects      objectGateway
	objectBucket string
	strictKeys   bool
	newToken     func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithStrictRegistration makes Register reject object keys outside the caller's
// namespace and keys whose object is not present in the store.
func WithStrictRegistration(enabled bool) Option {
	return func(s *Service) { s.strictKeys = enabled }
}

// NewService constructs a file service bound to a single object store bucket.
func NewService(repo metadataStore, objects objectGateway, objectBucket string, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		objects:      objects,
		objectBucket: objectBucket,
		newToken:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bucket returns the object store bucket the service writes to.
func (s *Service) Bucket() string {
	return s.objectBucket
}

// RegisterInput describes a file the client reports as uploaded.
type RegisterInput struct {
	ObjectKey    string
	OriginalName string
	MimeType     string
	Size         *int64
}

// RequestUpload derives a fresh object key in the caller's namespace and returns a pre-signed PUT URL for it.
// Nothing is persisted.
func (s *Service) RequestUpload(ctx context.Context, uid, fileName, fileType string) (UploadTicket, error) {
	if isBlank(uid, fileName, fileType) {
		return UploadTicket{}, fmt.Errorf("%w: fileName and fileType are required", ErrInvalidRequest)
	}

	key := ObjectKey(UserStorageID(uid), s.newToken(), fileName)

	uploadURL, err := s.objects.UploadURL(ctx, s.objectBucket, key, fileType)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("issue upload url: %w", err)
	}

	return UploadTicket{
		UploadURL: uploadURL,
		ObjectKey: key,
		Bucket:    s.objectBucket,
	}, nil
}

// Register records metadata for an uploaded object. The namespace is recomputed from uid.
func (s *Service) Register(ctx context.Context, uid string, in RegisterInput) (Record, error) {
	if isBlank(uid, in.ObjectKey, in.OriginalName, in.MimeType) {
		return Record{}, fmt.Errorf("%w: objectKey, originalName and mimeType are required", ErrInvalidRequest)
	}
	if in.Size != nil && *in.Size < 0 {
		return Record{}, fmt.Errorf("%w: size must not be negative", ErrInvalidRequest)
	}

	namespace := UserStorageID(uid)
	if s.strictKeys {
		if err := s.checkRegistrable(ctx, namespace, in.ObjectKey); err != nil {
			return Record{}, err
		}
	}

	return s.repo.Create(ctx, NewRecord{
		UID:           uid,
		UserStorageID: namespace,
		Bucket:        s.objectBucket,
		ObjectKey:     in.ObjectKey,
		OriginalName:  in.OriginalName,
		MimeType:      in.MimeType,
		Size:          in.Size,
	})
}

// List returns the caller's records, newest first.
func (s *Service) List(ctx context.Context, uid string) ([]Record, error) {
	records, err := s.repo.ListByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	SortNewestFirst(records)
	return records, nil
}

// RequestDownload returns a pre-signed GET URL for a key the caller owns.
// A key owned by somebody else is reported exactly like a missing key.
func (s *Service) RequestDownload(ctx context.Context, uid, objectKey string) (DownloadTicket, error) {
	if isBlank(uid, objectKey) {
		return DownloadTicket{}, fmt.Errorf("%w: objectKey is required", ErrInvalidRequest)
	}

	record, err := s.repo.FindByOwnerAndKey(ctx, uid, objectKey)
	if err != nil {
		return DownloadTicket{}, err
	}

	bucket := record.Bucket
	if bucket == "" {
		bucket = s.objectBucket
	}
	downloadURL, err := s.objects.DownloadURL(ctx, bucket, record.ObjectKey)
	if err != nil {
		return DownloadTicket{}, fmt.Errorf("issue download url: %w", err)
	}

	return DownloadTicket{
		DownloadURL:  downloadURL,
		ObjectKey:    record.ObjectKey,
		OriginalName: record.OriginalName,
		MimeType:     record.MimeType,
	}, nil
}

// Delete removes the object and then its metadata. When the object delete fails
// the metadata is left untouched.
func (s *Service) Delete(ctx context.Context, uid string, id uuid.UUID) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.UID != uid {
		return ErrForbidden
	}
	if record.ObjectKey == "" {
		return fmt.Errorf("%w: record %s has no object key", ErrInconsistentRecord, record.ID)
	}

	bucket := record.Bucket
	if bucket == "" {
		bucket = s.objectBucket
	}
	if err := s.objects.DeleteObject(ctx, bucket, record.ObjectKey); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}

	return s.repo.Delete(ctx, record.ID)
}

func (s *Service) checkRegistrable(ctx context.Context, namespace, objectKey string) error {
	if !strings.HasPrefix(objectKey, namespace+"/") {
		return fmt.Errorf("%w: objectKey is outside the caller's namespace", ErrInvalidRequest)
	}
	exists, err := s.objects.ObjectExists(ctx, s.objectBucket, objectKey)
	if err != nil {
		return fmt.Errorf("check object: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: object has not been uploaded", ErrInvalidRequest)
	}
	return nil
}

func isBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
