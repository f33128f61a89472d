// Package track holds the value types that flow through tunepull: the
// normalized catalog record, the resolved catalog a URL expands into, the
// search candidate and raw audio buffer handed between fetch steps, and the
// per-record fetch result.
//
// Every type here is a plain value. Stages receive records by value and never
// mutate them, so results can be collected in input order without copying.
package track
