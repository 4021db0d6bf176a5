/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

import (
	"fmt"
)

// ErrorKind classifies a RoutingError.
type ErrorKind int

const (
	// KindConfig is a misconfigured table or partitioner.
	KindConfig ErrorKind = iota
	// KindAmbiguous is a single row routed to more than one node.
	KindAmbiguous
	// KindNoPartition is a single row without a rule value or a partition.
	KindNoPartition
	// KindEvaluation is a value the partitioner or analyzer could not handle.
	KindEvaluation
	// KindUnknownTable is a table missing from the router.
	KindUnknownTable
)

var errorKindNames = map[ErrorKind]string{
	KindConfig:       "config",
	KindAmbiguous:    "ambiguous",
	KindNoPartition:  "no.partition",
	KindEvaluation:   "evaluation",
	KindUnknownTable: "unknown.table",
}

// String returns the kind name.
func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// RoutingError is the only error type routing returns.
// The message of the internal cause is kept, the cause itself is not.
type RoutingError struct {
	Table   string
	Kind    ErrorKind
	Message string
}

// Error implements error.
func (e *RoutingError) Error() string {
	return fmt.Sprintf("router.route.table[%s].%s.error:%s", e.Table, e.Kind, e.Message)
}

func newRoutingError(table string, kind ErrorKind, format string, args ...interface{}) *RoutingError {
	return &RoutingError{Table: table, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapRoutingError wraps err unless it is already a RoutingError.
func wrapRoutingError(table string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RoutingError); ok {
		return re
	}
	return &RoutingError{Table: table, Kind: kind, Message: err.Error()}
}
