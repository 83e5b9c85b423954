//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the ankivocab binary.
func Build() error {
	fmt.Println("Building ankivocab...")
	version, err := sh.Output("git", "describe", "--tags", "--always")
	if err != nil {
		version = "dev"
	}
	return sh.RunV("go", "build", "-ldflags",
		"-X codeberg.org/charliev/ankivocab/internal.Version="+version,
		"-o", "ankivocab", "./cmd/ankivocab")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and installs ankivocab into GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.RunV("go", "install", "./cmd/ankivocab")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("ankivocab")
}
