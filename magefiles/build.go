//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the sceneimport binary into bin/.
func (Build) CLI() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/sceneimport", "./cmd/sceneimport"), withStream())
	return err
}

// Tidies modules and vets every package.
func (Build) Vet() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
