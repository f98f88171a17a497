package luminar

import (
	"fmt"
	"strings"

	"github.com/luminardb/luminar-go/model"
)

// WriteFailure is one failed table group of a multi-endpoint write.
type WriteFailure struct {
	Tables []string
	Err    error
}

// MultiWriteError reports the outcome of a write that spanned multiple
// endpoints. The successful partitions' merged summary is kept alongside
// the failures, so a partial failure loses no information.
type MultiWriteError struct {
	Ok     model.WriteOk
	Failed []WriteFailure
}

// AllOk reports whether every partition succeeded.
func (e *MultiWriteError) AllOk() bool {
	return len(e.Failed) == 0
}

// Error implements the error interface.
func (e *MultiWriteError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "write partially failed: %d table group(s) failed", len(e.Failed))
	for _, f := range e.Failed {
		fmt.Fprintf(&sb, "; tables %v: %v", f.Tables, f.Err)
	}
	return sb.String()
}

// Unwrap exposes the per-group failures to errors.Is/As.
func (e *MultiWriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// mergeWriteResults folds per-partition outcomes into one aggregated
// result. It is order independent: success counts are summed, table
// names concatenated and failures collected as-is. No table group is
// dropped, including empty ones.
func mergeWriteResults(outcomes []partitionOutcome) *MultiWriteError {
	merged := &MultiWriteError{}
	for _, outcome := range outcomes {
		if outcome.err != nil {
			merged.Failed = append(merged.Failed, WriteFailure{
				Tables: outcome.tables,
				Err:    outcome.err,
			})
			continue
		}
		merged.Ok.Merge(model.WriteOk{
			Tables:  outcome.tables,
			Success: outcome.ok.Success,
			Failed:  outcome.ok.Failed,
		})
	}
	return merged
}
