// Package storage provides the object store that pick-lists are read from and
// run reports are written to.
//
// Backends register themselves with RegisterFactory from their init function;
// import the provider package for its side effect before calling New:
//
//	import _ "github.com/kbukum/liquidkit/storage/local"
//
//	store, err := storage.New(storage.Config{Provider: "local"}, log)
//
// Backends report a missing object as an errors.ErrCodeNotFound AppError and
// every other failure as a retryable errors.ErrCodeStorage AppError.
package storage
