// Package models defines the domain types shared by the matching engine, the migration engine and the persistence layer.
//
//   - [SourceTrack] : Track metadata read from the source playlist
//   - [CandidateResult] : A destination search hit, either a song or a video
//   - [MatchOutcome] : Exactly one per source track, naming the stage that matched it (or [MethodNone])
//   - [MigrationReport] : Counts and track lists built incrementally by the migration engine
//   - [RunSummary] : A persisted run as listed by the history command
package models
