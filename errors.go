// Copyright 2022 bnb-chain. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package vdb

import (
	"github.com/pkg/errors"
)

var (
	ErrEmptyTree = errors.New("tree must have at least one leaf")

	ErrIndexOutOfRange = errors.New("leaf index out of range")

	ErrAddressOutOfRange = errors.New("address out of range")

	ErrInvalidAddressSpace = errors.New("address space size must be positive")

	ErrInvalidDigestSize = errors.New("digest size must be 32 bytes")

	ErrUnknownDigest = errors.New("unknown digest")

	// ErrMalformedPath signals a structurally invalid authentication path.
	// It is never returned for a path that is well formed but does not match.
	ErrMalformedPath = errors.New("malformed authentication path")

	ErrAddressNotInProof = errors.New("address not covered by proof")

	ErrTxnClosed = errors.New("transaction already committed or discarded")

	ErrInvalidOption = errors.New("invalid option")
)
