// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bureau-foundation/bureau-pdf/lib/config"
	"github.com/bureau-foundation/bureau-pdf/lib/version"
)

const deviceID = "MFG:Generic;MDL:bureau-pdf Printer;DES:Generic bureau-pdf Printer;CLS:PRINTER;CMD:PDF,POSTSCRIPT;"

// Device is one line of device discovery output.
type Device struct {
	URI       string
	MakeModel string
}

func (d Device) String() string {
	return fmt.Sprintf("file %s %q %q %q", d.URI, d.MakeModel, version.DeviceInfo(), deviceID)
}

// Devices lists the default device plus one device per instance
// configuration file (bureau-pdf-<name>.yaml) in directory. A missing
// directory yields only the default device.
func Devices(directory string) ([]Device, error) {
	devices := []Device{{URI: config.Scheme + ":/", MakeModel: "Virtual PDF Printer"}}

	entries, err := os.ReadDir(directory)
	if errors.Is(err, fs.ErrNotExist) {
		return devices, nil
	}
	if err != nil {
		return devices, fmt.Errorf("listing %s: %w", directory, err)
	}

	var names []string
	for _, entry := range entries {
		name, ok := strings.CutPrefix(entry.Name(), config.Scheme+"-")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ".yaml")
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		devices = append(devices, Device{
			URI:       config.Scheme + ":/" + name,
			MakeModel: "Virtual " + name + " Printer",
		})
	}
	return devices, nil
}

// Announce writes the device discovery lines for directory to w.
func Announce(w io.Writer, directory string) error {
	devices, err := Devices(directory)
	for _, device := range devices {
		if _, writeErr := fmt.Fprintln(w, device.String()); writeErr != nil {
			return writeErr
		}
	}
	return err
}
