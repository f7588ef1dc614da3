// Package tasks orchestrates a playlist migration with real-time progress reporting.
//
// # Pipeline
//
// [MigrationEngine.Run] executes, in order:
//
//  1. Fetch every source track ([SourceCatalog]). Failure aborts with [shared.ErrSourceFetch].
//  2. Create the destination playlist ([Destination]). Failure aborts with [shared.ErrPlaylistCreate].
//  3. Resolve each track through the [matching.Cascade]; accepted matches go to the [Applier].
//  4. Flush the applier.
//  5. Read back the destination track count. Failure only marks the report unverified.
//  6. Optionally persist the report through a [RunRecorder].
//
// # Applying Matches
//
// [BatchApplier] adds accumulated matches in fixed-size chunks, sleeping between chunks.
// [SingleApplier] adds each match as soon as it is resolved and sleeps after every call.
// Neither retries. A failed call moves its outcomes into the report's failed set and the run continues.
//
// # Progress Reporting
//
// Every update is delivered: Run blocks until the consumer receives it, or until ctx is done.
// [MatchTracks] updates carry a [TrackProgress]; [AddTracks] updates carry an [ApplyProgress].
package tasks
