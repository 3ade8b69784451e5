// Package board holds the live view state of the status page: one indicator
// per known service, the manual refresh control and the time of the last
// successful check.
//
// The board is the only place indicator state is mutated. The poller drives
// it through Reset, Update, SetAll, SetTrigger and SetLastCheck; page
// handlers read it through Snapshot. All methods are safe for concurrent use.
package board
