// Package textutil provides the string normalization and filename
// sanitization shared by catalog resolution and the output library.
//
// NormalizeField is applied to every metadata value a record carries, so the
// same track resolved twice (or from two playlists) produces the same record
// key and the same output path. SanitizeFileName makes those values safe to
// use as path segments. Fingerprint and Coverage score how well a search hit's
// title matches the record it was chosen for.
package textutil
