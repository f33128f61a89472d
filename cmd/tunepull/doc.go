// Package main hosts the tunepull CLI.
//
// Commands resolve Spotify links into track lists, run the fetch pipeline
// against the local library, and inspect or maintain what has been stored.
// Configuration, logging, and service wiring are centralized in
// commandContext so each command only handles its own flags and output.
package main
