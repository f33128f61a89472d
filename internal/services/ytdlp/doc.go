// Package ytdlp locates source videos for track records through the yt-dlp
// search extractor ("ytsearch1:<artist> <title>").
//
// The first ranked hit is returned as a track.Candidate. An empty result set
// maps to services.ErrNoCandidate; a missing binary, nonzero exit, timeout, or
// unparsable output maps to services.ErrLocatorUnavailable.
package ytdlp
