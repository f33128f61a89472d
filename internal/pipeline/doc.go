// Package pipeline drives a resolved catalog through search, download, and
// tagging, one record at a time.
//
// Each record ends in exactly one outcome. Failures are isolated to the
// record that produced them and never abort the batch. Records whose output
// file already exists are reported as successes without touching the network
// unless the tagger is configured to overwrite.
package pipeline
