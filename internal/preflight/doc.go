// Package preflight provides readiness checks for the services and
// filesystem paths tunepull depends on.
//
// The "tunepull status" command renders every check. The fetch command runs
// CheckSystemDeps before resolving so a missing yt-dlp or ffmpeg is reported
// once instead of once per record.
package preflight
