/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package backend

import (
	"bytes"
	"fmt"
	"strings"
)

// ShardFailure is the failure of one backend.
type ShardFailure struct {
	Backend string
	Err     error
}

// ShardError reports a fan-out that failed on some backends,
// every enlisted backend is in either Failed or Succeeded.
type ShardError struct {
	Op        string
	Failed    []ShardFailure
	Succeeded []string
}

// Error implements the error interface.
func (e *ShardError) Error() string {
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	fmt.Fprintf(buf, "session.%s.failed.on[", e.Op)
	for i, f := range e.Failed {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "%s:%v", f.Backend, f.Err)
	}
	fmt.Fprintf(buf, "].succeeded[%s]", strings.Join(e.Succeeded, ","))
	return buf.String()
}

// FailedBackends returns the names of the failed backends.
func (e *ShardError) FailedBackends() []string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, f.Backend)
	}
	return names
}
