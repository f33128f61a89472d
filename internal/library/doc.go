// Package library owns the on-disk output tree: one directory per collection,
// one tagged file per record.
//
// Layout computes output paths in "readable" (Artist - Title.m4a) or "slug"
// (artist-title.m4a) style. Tree lists what is stored, reading ID3 tags back
// from mp3 files; Archive zips the tree; Clear empties it. AcquireLock takes
// the advisory lock writers hold while modifying the tree.
package library
