// Copyright (c) 2025 Civicmesh.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votematrix maintains the in-memory sparse vote matrix and the
staleness fingerprint for each conversation.

# Matrix

Rows are participants, columns are comments, cells hold the latest vote
value in {-1, 0, 1} or are unset. At most one active vote exists per
(participant, comment) pair; a later vote overwrites the cell.

# Fingerprint

A per-conversation counter that advances whenever a cell value changes.
The engine caches its computed result keyed by this value: equal
fingerprint means the cached projection and clusters are still fresh.
Re-recording an identical vote does not advance the fingerprint, so
idempotent writes never invalidate the cache.

# Cold Start

The matrix is rebuilt incrementally, never from scratch - except on the
first access after process start, when the Loader replays the persisted
votes for the conversation and the fingerprint starts at the vote count.

# Snapshots

Snapshot returns an immutable copy with sorted participant and comment id
slices. All math runs against snapshots, so vote recording and computation
share nothing but the brief copy under the conversation lock.
*/
package votematrix
