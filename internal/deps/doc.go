// Package deps checks that the external executables tunepull drives are
// installed.
package deps
