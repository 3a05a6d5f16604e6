// Package cli implements the examwatch command line.
//
// A run validates the environment, then performs exactly one poll of the exam
// finder and exits. Scheduling is left to cron or a CI schedule.
package cli
