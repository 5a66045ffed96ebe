//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/pkg/errors"
)

type Test mg.Namespace

var sourceDirs = []string{"miriel.go", "config", "editor", "importer", "render", "scene", "status", "tools", "utils", "web", "webutils"}

// Runs the unit tests.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Checks formatting and vets the module.
func (Test) Lint() error {
	out, err := executeCmd("gofmt", withArgs(append([]string{"-l"}, sourceDirs...)...))
	if err != nil {
		return err
	}
	if out != "" {
		return errors.Errorf("unformatted files:\n%s", out)
	}
	_, err = executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
