// Package history records the outcome of validation runs and enforces
// retention on them.
//
// Records are stored in SQLite through SQLiteStore or kept in process by
// MemoryStore. A Pruner deletes records by age and by count; a Scheduler
// runs the Pruner on a cron schedule while a long-lived command such as
// "tessera watch" is active.
package history
