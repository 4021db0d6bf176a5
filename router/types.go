/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package router

// MethodType type.
type MethodType string

const (
	methodTypeHash   = "HASH"
	methodTypeMod    = "MOD"
	methodTypeRange  = "RANGE"
	methodTypeList   = "LIST"
	methodTypeGlobal = "GLOBAL"
	methodTypeSingle = "SINGLE"
)

// IsPartitioned returns true if rows of the method are spread by rule columns.
func (m MethodType) IsPartitioned() bool {
	switch m {
	case methodTypeGlobal, methodTypeSingle:
		return false
	}
	return true
}
