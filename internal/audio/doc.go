// Package audio decodes lesson recordings into PCM clips and writes
// extracted syllable clips back to disk.
//
// WAV files are handled natively through go-audio. Everything else (the
// lesson site serves MP3) is shelled out to ffmpeg with a temporary WAV
// intermediate, so the rest of the toolkit only ever sees PCM buffers.
// The Executor seam lets tests substitute the ffmpeg invocation.
package audio
