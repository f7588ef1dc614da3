// Package matching decides whether a destination search result is the same recording as a source track.
//
// A [Profile] scores a (track, candidate) pair from title, artist and duration similarity. Scored stages keep the
// best candidate that passes the artist gate and clears the stage threshold. A [Cascade] runs the strict, relaxed
// and video stages in order and stops at the first one that accepts.
package matching
