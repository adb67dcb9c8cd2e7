package usecase

import "errors"

// ErrPersistence marks an infrastructure/repository failure inside a use case.
var ErrPersistence = errors.New("chat usecase: persistence error")

// ErrMediaStore marks a failure decoding or writing an uploaded payload.
var ErrMediaStore = errors.New("chat usecase: media store error")
