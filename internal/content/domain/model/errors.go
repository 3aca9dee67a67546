package model

import "errors"

var (
	ErrParentNotFound         = errors.New("parent document not found")
	ErrParentExists           = errors.New("parent document already exists")
	ErrAssetNotFound          = errors.New("asset not found")
	ErrUnknownCollection      = errors.New("unknown collection key")
	ErrCollectionKindMismatch = errors.New("collection key not allowed on this parent kind")
	ErrUnknownKind            = errors.New("unknown item kind")
	ErrUnknownParentKind      = errors.New("unknown parent kind")
	ErrInvalidParentID        = errors.New("invalid parent id")
	ErrVersionConflict        = errors.New("version conflict")
	ErrIndexOutOfRange        = errors.New("index out of range")
)
