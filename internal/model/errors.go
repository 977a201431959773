package model

import "errors"

// ErrReportInconsistency is returned when aggregated report counts violate
// the internal accounting invariant: every attempted canonical repository
// must land in exactly one of the verified or unverified buckets.
//
// Design decision: This violation fails the whole run loudly instead of
// degrading into a best-effort report. A silently wrong report is worse
// than no report, because downstream consumers treat the counts as truth.
var ErrReportInconsistency = errors.New("report inconsistency: verified + unverified counts do not sum to attempted repositories")
