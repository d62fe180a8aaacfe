package file

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordIndex interface {
	ListAll(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type objectProber interface {
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Checked int
	Orphans []Record
	Removed int
	Failed  int
}

// Reconciler removes metadata records whose object no longer exists in the object store.
type Reconciler struct {
	records recordIndex
	objects objectProber
	log     *zap.Logger
	dryRun  bool
}

// NewReconciler builds a reconciler. In dry-run mode orphans are only reported.
func NewReconciler(records recordIndex, objects objectProber, log *zap.Logger, dryRun bool) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{records: records, objects: objects, log: log, dryRun: dryRun}
}

// Sweep checks every record once. A failing object probe skips the record
// rather than treating it as orphaned.
func (r *Reconciler) Sweep(ctx context.Context) (SweepReport, error) {
	records, err := r.records.ListAll(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list records: %w", err)
	}

	var report SweepReport
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		exists, err := r.objects.ObjectExists(ctx, rec.Bucket, rec.ObjectKey)
		if err != nil {
			report.Failed++
			r.log.Warn("probe object", zap.String("object_key", rec.ObjectKey), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		report.Orphans = append(report.Orphans, rec)
		if r.dryRun {
			r.log.Info("orphaned record", zap.String("id", rec.ID.String()), zap.String("object_key", rec.ObjectKey))
			continue
		}
		if err := r.records.Delete(ctx, rec.ID); err != nil {
			report.Failed++
			r.log.Error("delete orphaned record", zap.String("id", rec.ID.String()), zap.Error(err))
			continue
		}
		report.Removed++
	}
	return report, nil
}
