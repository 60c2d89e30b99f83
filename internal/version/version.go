/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package version holds the build version, overridable at link time:
//
//	go build -ldflags "-X screenwriter/internal/version.Version=1.2.0"
package version

import "runtime/debug"

// Version is the semantic version of the build.
var Version = "0.1.0-dev"

// Commit is the VCS revision, filled from build info when not set by the linker.
var Commit = ""

// String returns the version with the short commit appended when known.
func String() string {
	c := Commit
	if c == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	if c == "" {
		return Version
	}
	return Version + " (" + c + ")"
}
