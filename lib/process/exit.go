// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
)

// Report writes "ERROR: err" to w in the form the print scheduler
// picks up from a backend's stderr.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "ERROR: %v\n", err)
}
