// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package classpath resolves class names to class file bytes from
// directories and jars.
package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("hookinject.classpath")

// Loader returns the bytes of a class file. Missing classes are reported
// with an error satisfying errors.Is(err, fs.ErrNotExist).
type Loader interface {
	Load(name string) ([]byte, error)
}

// InternalName turns com.example.Foo into com/example/Foo. A trailing
// .class is dropped.
func InternalName(name string) string {
	name = strings.TrimSuffix(name, ".class")
	return strings.ReplaceAll(name, ".", "/")
}

func resourceName(name string) string { return InternalName(name) + ".class" }

type Dir struct {
	Root string
}

func (self Dir) Load(name string) ([]byte, error) {
	resource := resourceName(name)
	if !fs.ValidPath(resource) {
		return nil, &fs.PathError{Op: "load", Path: resource, Err: fs.ErrInvalid}
	}
	path := filepath.Join(self.Root, filepath.FromSlash(resource))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s from %s", name, path)
	return data, nil
}

func (self Dir) String() string { return self.Root }

// Jar reads classes out of a zip archive. The archive is opened on every
// Load so that a Jar holds no file handles between calls.
type Jar struct {
	Path string
}

func (self Jar) Load(name string) ([]byte, error) {
	r, err := zip.OpenReader(self.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entry := resourceName(name)
	f, err := r.Open(entry)
	if err != nil {
		return nil, fmt.Errorf("%s!%s: %w", self.Path, entry, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s!%s: %w", self.Path, entry, err)
	}
	log.Debugf("loaded %s from %s", name, self.Path)
	return data, nil
}

func (self Jar) String() string { return self.Path }

// Chain tries each loader in order and returns the first hit.
type Chain []Loader

func (self Chain) Load(name string) ([]byte, error) {
	for _, l := range self {
		data, err := l.Load(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("class %s not on classpath: %w", InternalName(name), fs.ErrNotExist)
}

// New builds a Chain from directory and .jar/.zip entries.
func New(entries ...string) (Chain, error) {
	chain := make(Chain, 0, len(entries))
	for _, entry := range entries {
		info, err := os.Stat(entry)
		if err != nil {
			return nil, fmt.Errorf("classpath entry: %w", err)
		}
		switch ext := strings.ToLower(filepath.Ext(entry)); {
		case info.IsDir():
			chain = append(chain, Dir{entry})
		case ext == ".jar" || ext == ".zip":
			chain = append(chain, Jar{entry})
		default:
			return nil, fmt.Errorf("classpath entry %s is neither a directory nor a jar", entry)
		}
	}
	return chain, nil
}
