// Package youtube downloads audio-only streams for located candidates using
// github.com/kkdai/youtube/v2.
//
// SelectFormat encodes the stream choice; Fetcher performs metadata lookup and
// an in-memory download. Restricted or unplayable videos and videos without an
// audio-only stream map to services.ErrSourceUnavailable; transport failures
// map to services.ErrNetwork. Nothing is retried.
package youtube
