// Package skiplock claims and processes queued work items stored in a shared relational table
// without any coordination service between consumer processes.
//
// Typical flow:
//  1. A Producer inserts PENDING items through Store.InsertBatch.
//  2. A Scheduler fires a Cycle on a fixed period. Each pass locks PENDING rows with
//     SELECT ... FOR UPDATE SKIP LOCKED, moves them to CLAIMED under a version check and commits.
//  3. The claimed items are fanned out to a shared Pool. Every unit moves its item to DONE with a
//     single compare-and-swap update on the version column.
//  4. The pass reports succeeded/total.
//
// Items whose completion update fails stay in CLAIMED. Nothing moves them back.
//
// For storage backends see the mysql and postgres packages.
package skiplock
