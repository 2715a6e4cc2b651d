package domain

import "errors"

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by repositories when an insert trips a unique
// constraint. The storage layer translates driver-specific errors so the
// services never inspect SQLSTATE codes.
var ErrDuplicate = errors.New("duplicate record")
