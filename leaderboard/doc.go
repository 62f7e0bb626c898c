// Package leaderboard turns submitted result rows into player standings and
// standings into ranked boards and exports. It performs no I/O: callers load a
// snapshot, call in, and persist what comes back.
package leaderboard
