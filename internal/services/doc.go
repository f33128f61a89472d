// Package services defines shared utilities consumed by the pipeline and the
// external integrations under services/.
//
// Key responsibilities:
//   - Sentinel error markers plus the Wrap helper, so every integration tags
//     failures with a class (invalid url, auth, not found, locator/source
//     unavailable, network, transcode) that callers test with errors.Is.
//   - OutcomeFor, which turns a fetch-stage error into the per-record outcome.
//   - Context helpers that stamp run IDs, record positions, and step names for
//     structured logging.
package services
