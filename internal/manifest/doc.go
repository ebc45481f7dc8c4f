// Package manifest defines the lesson manifest data model and its
// on-disk store.
//
// A manifest describes one lesson: the long row/column recordings that
// were downloaded, the ordered syllables each one covers, and the
// per-syllable segment timings produced by the segmentation engine.
// The store serializes every read-modify-write behind a flock sidecar
// plus an in-process mutex and saves atomically, so concurrent command
// invocations never corrupt or interleave manifest state.
package manifest
