// Package segment is the audio segmentation and manifest reconciliation
// engine.
//
// It detects syllable boundaries in long lesson recordings by silence
// analysis, resolves per-recording parameter overrides, aligns detected
// intervals with the syllables each recording is known to contain, cuts
// padded clips, and folds the results back into the lesson manifest
// without disturbing entries the run did not touch. Manual timing
// corrections applied by an operator always survive automatic re-runs.
package segment
