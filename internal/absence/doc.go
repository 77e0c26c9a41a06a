// Package absence derives absence instances from roll call attendance.
//
// The computation is a four stage pipeline over a fixed snapshot:
//
//	Select    keep records dated inside the period
//	Tag       per (student, application), fold a running presence count
//	          into each record's group id
//	Filter    keep possible-attendance days the student missed
//	Aggregate one instance per group: first date, last date, count
//
// Only presences advance the group id. A not-possible day between two
// absences therefore neither breaks the streak nor counts as missed.
//
// Partitions are independent and run on a bounded worker pool; within a
// partition the fold is strictly sequential along (date, period).
package absence
