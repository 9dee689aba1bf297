//+build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Downloads modules and builds both binaries into ./bin.
func Build() error {
	if err := sh.Run("go", "mod", "download"); err != nil {
		return err
	}
	if err := sh.Run("go", "build", "-o", "bin/monitor", "./cmd/monitor"); err != nil {
		return err
	}
	return sh.Run("go", "build", "-o", "bin/reporter", "./cmd/reporter")
}

// Runs the test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Runs one monitor invocation against the default config.
func Run() error {
	mg.Deps(Build)
	return sh.RunV("bin/monitor")
}

// Generates the turnaround report from the accumulated log.
func Report() error {
	mg.Deps(Build)
	return sh.RunV("bin/reporter")
}
