// Package ffmpeg packages downloaded audio into tagged files.
//
// The Tagger pipes an in-memory buffer into ffmpeg, sets the title, artist,
// and album tags, and writes an m4a (stream copy when the source is already
// mp4) or mp3 file. Any stderr output or a nonzero exit becomes a
// *TranscodeError, which matches services.ErrTranscodeFailed.
package ffmpeg
