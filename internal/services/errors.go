// Package services defines the business logic for series, interactions,
// recommendations and statistics. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages should be performed at the transport layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSeriesNotFound indicates that the referenced car series does not
	// exist.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrRecommendNotFound indicates that the requested recommendation
	// snapshot does not exist.
	ErrRecommendNotFound = errors.New("recommendation not found")

	// ErrDuplicateLike is returned when a user attempts to like a series
	// they have already liked.
	ErrDuplicateLike = errors.New("series already liked")

	// ErrEmptyImport is returned when an import is requested with no rows.
	ErrEmptyImport = errors.New("import data must not be empty")
)

// ImportError is the aggregate business error raised when at least one row of
// a batch import failed. It carries the human-readable report assembled from
// the per-row outcomes.
type ImportError struct {
	SuccessCount int
	FailCount    int
	Report       string
}

// Error implements the error interface.
func (e *ImportError) Error() string { return e.Report }

// importReport accumulates per-row outcomes of a batch import and renders
// the final report. Row messages keep the established "<br/>"-separated
// format consumed by the admin UI.
type importReport struct {
	successCount int
	failCount    int
	successMsg   strings.Builder
	failMsg      strings.Builder
}

func (r *importReport) success(display interface{}) {
	r.successCount++
	fmt.Fprintf(&r.successMsg, "<br/> 第%d条数据，操作成功：%v", r.successCount, display)
}

func (r *importReport) failure(display interface{}, reason string) {
	r.failCount++
	fmt.Fprintf(&r.failMsg, "<br/> 第%d条数据，%s：%v", r.failCount, reason, display)
}

// result returns the success message, or an *ImportError when any row failed.
func (r *importReport) result() (string, error) {
	if r.failCount > 0 {
		report := fmt.Sprintf("导入成功%d条，失败%d条。", r.successCount, r.failCount)
		if r.successCount > 0 {
			report += r.successMsg.String() + "<br/>"
		}
		report += r.failMsg.String()
		return "", &ImportError{
			SuccessCount: r.successCount,
			FailCount:    r.failCount,
			Report:       report,
		}
	}
	return fmt.Sprintf("恭喜您，数据已全部导入成功！共 %d 条，数据如下：%s",
		r.successCount, r.successMsg.String()), nil
}
