// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package savepath resolves an untrusted file_name field from an incoming
// REQ frame into a safe destination path underneath a fixed save directory.
//
// The transfer protocol receives file_name directly off the wire from a peer
// that is, at best, semi-trusted (anyone on the LAN who knows the discovery
// port). Resolve rejects anything that could escape the save directory
// rather than trying to "clean" it into something safe.
package savepath

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsafeName is wrapped into the error returned by Resolve when name
// cannot be safely placed under a save directory.
var ErrUnsafeName = errors.New("unsafe file name")

// D resolves file names into paths underneath a fixed root directory.
//
// Unlike stagingdir.D, D does not stage into a temporary location and
// atomically rename on commit: the transfer handler pre-allocates the
// destination file up front and writes into it from multiple chunk workers
// via concurrent seeks, so there is no single "finished" moment to rename
// around. D's only job is turning a wire file_name into a safe path.
type D struct {
	// root is the absolute save directory. All resolved paths are
	// guaranteed to live underneath it.
	root string
}

// New returns a D rooted at dir. dir is made absolute immediately so later
// comparisons in Resolve aren't fooled by a working-directory change.
func New(dir string) (*D, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving save directory %q", dir)
	}
	return &D{root: abs}, nil
}

// Root returns the absolute save directory.
func (d *D) Root() string { return d.root }

// Resolve turns a wire file_name into an absolute path underneath the save
// directory, or returns an error wrapping ErrUnsafeName if name cannot be
// placed there safely.
//
// A name is rejected if, once cleaned, it is empty, absolute, or escapes the
// save directory via "..". The transfer handler rejects the transfer with
// REJ|BadFileName rather than attempting to sanitize the name into something
// plausible: a renamed destination is a silent surprise to the sender.
func (d *D) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrUnsafeName, "empty file name")
	}

	// Wire names travel with forward slashes regardless of host OS; reject
	// any path separator outright rather than trying to interpret nesting.
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, '\\') {
		return "", errors.Wrapf(ErrUnsafeName, "%q contains a path separator", name)
	}

	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || filepath.IsAbs(clean) {
		return "", errors.Wrapf(ErrUnsafeName, "%q is not a plain file name", name)
	}

	full := filepath.Join(d.root, clean)

	// Belt-and-suspenders: confirm the joined path still lives under root.
	// filepath.Join already cleans, so this mainly guards against a future
	// change to the checks above rather than anything reachable today.
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrUnsafeName, "%q escapes the save directory", name)
	}

	return full, nil
}
