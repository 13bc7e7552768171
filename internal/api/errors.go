// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

package api

import (
	"errors"
	"net/http"

	syncpkg "github.com/jgreen210/quotebridge/internal/sync"
)

// syncpkgIsNotFound reports whether an error chain means "no such
// record": either the sync package's not-found sentinel (board side) or
// a 404 from the field service API.
func syncpkgIsNotFound(err error) bool {
	if errors.Is(err, syncpkg.ErrNotFound) {
		return true
	}
	var remote *syncpkg.RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound
}
