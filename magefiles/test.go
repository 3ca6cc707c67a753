//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs all tests.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs all tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the importer tests with coverage.
func (Test) Cover() error {
	_, err := executeCmd("go", withArgs("test", "-cover", "./internal/...", "./pkg/..."), withStream())
	return err
}
