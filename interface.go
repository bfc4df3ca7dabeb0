// Copyright 2022 bnb-chain. All Rights Reserved.
//
// Distributed under MIT license.
// See file LICENSE for detail or copy at https://opensource.org/licenses/MIT

package vdb

import "github.com/ethereum/go-ethereum/common"

type (
	Item struct {
		Address uint64
		Value   uint64
	}
	VerifiableStore interface {
		Size() uint64
		Begin() *Transaction
		Root() common.Hash
		RootAt(version uint64) (common.Hash, bool)
		Version() uint64
		Verified() bool
		Close()
	}
)
