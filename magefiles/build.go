//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the editor server into bin/.
func (Build) Miriel() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/miriel", "."), withStream())
	return err
}

// Builds the scene formatter into bin/.
func (Build) Mscnfmt() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/mscnfmt", "./tools/mscnfmt"), withStream())
	return err
}

// Builds every binary.
func (Build) All() {
	mg.SerialDeps(Build.Miriel, Build.Mscnfmt)
}

// Rewrites every scene in the scenes dir in canonical form.
func (Build) Scenes() error {
	mg.Deps(Build.Mscnfmt)
	_, err := executeCmd("sh", withArgs("-c", "bin/mscnfmt -w assets/scenes/*.mscn"), withStream())
	return err
}
