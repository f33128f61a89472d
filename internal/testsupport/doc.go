// Package testsupport holds fixtures shared by package tests: throwaway
// configs rooted in temp directories, stub binaries on PATH, and a history
// store that closes itself.
package testsupport
