//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the demo binary into bin/.
func (Build) Demo() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/oxy-demo", "./cmd/oxy-demo"), withStream())
	return err
}

// Compiles every package without producing binaries.
func (Build) All() error {
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}
