//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the demo with the default configuration.
func (Run) Demo() error {
	if err := (Build{}).Demo(); err != nil {
		return err
	}
	fmt.Println("Run demo...")
	_, err := executeCmd("bin/oxy-demo", withArgs("-profile"), withStream())
	return err
}
