package absence

import (
	"context"
	"runtime"

	"absence-instances/internal/models"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// ErrRejectedPartitions marks a strict run that refused malformed partitions.
var ErrRejectedPartitions = errors.New("attendance partitions rejected")

type Options struct {
	// Workers bounds concurrent partitions; 0 means one per CPU.
	Workers int
	// Strict fails the whole computation when any partition is rejected.
	Strict bool
}

// Result is the outcome of one computation over a snapshot.
type Result struct {
	Instances []models.AbsenceInstance
	// Rejected lists partitions whose instances were withheld.
	Rejected []*models.MalformedRecordError

	Partitions int
	Records    int
	Absences   int
}

type partitionOutcome struct {
	instances []models.AbsenceInstance
	absences  int
	rejected  *models.MalformedRecordError
}

// Compute runs tag, filter and aggregate for every partition of records.
// Records are assumed already selected for the period.
func Compute(ctx context.Context, records []models.AttendanceRecord, opts Options) (*Result, error) {
	partitions := PartitionRecords(records)
	outcomes := make([]partitionOutcome, len(partitions))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range partitions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := computePartition(partitions[i])
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "absence computation aborted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "absence computation aborted")
	}

	result := &Result{Partitions: len(partitions), Records: len(records)}
	// Partitions are key ordered and each outcome is date ordered,
	// so concatenation is already in report order.
	for _, out := range outcomes {
		if out.rejected != nil {
			result.Rejected = append(result.Rejected, out.rejected)
			continue
		}
		result.Absences += out.absences
		result.Instances = append(result.Instances, out.instances...)
	}

	if opts.Strict && len(result.Rejected) > 0 {
		return result, rejectedError(result.Rejected)
	}
	return result, nil
}

func computePartition(p Partition) (partitionOutcome, error) {
	tagged, err := Tag(p)
	if err != nil {
		var malformed *models.MalformedRecordError
		if errors.As(err, &malformed) {
			return partitionOutcome{rejected: malformed}, nil
		}
		return partitionOutcome{}, err
	}

	absences := FilterAbsences(tagged)
	return partitionOutcome{
		instances: Aggregate(absences),
		absences:  len(absences),
	}, nil
}

func rejectedError(rejected []*models.MalformedRecordError) error {
	err := errors.Wrapf(rejected[0], "%d partition(s) rejected", len(rejected))
	for _, r := range rejected[1:] {
		err = errors.WithDetail(err, r.Error())
	}
	return errors.Mark(err, ErrRejectedPartitions)
}
