package main

import (
	// Packages
	version "github.com/mutablelogic/go-eduplan/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type VersionCmd struct{}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *VersionCmd) Run(globals *Globals) error {
	globals.display.Println(string(version.JSON(execName())))
	return nil
}
