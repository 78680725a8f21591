// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the tagged failures that abort a staking operation
// with no state change. They are distinct from infrastructure errors: a revert
// means the caller asked for something the protocol forbids.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr reports whether err is (or wraps) a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// The revert kinds raised by the staking engine.
var (
	ErrNotStarted     = New("staking not started")
	ErrAlreadyStarted = New("staking already started")
	ErrDisabled       = New("staking disabled")
	ErrEnabled        = New("staking still enabled")
	ErrUnauthorized   = New("unauthorized")
	ErrBadRange       = New("bad period range")
	ErrFrozen         = New("token frozen")
	ErrCooldown       = New("unstake cooldown")
	ErrTransferFailed = New("token transfer failed")
	ErrNotWhitelisted = New("sender not whitelisted")
	ErrEmptyHistory   = New("empty history")
	ErrPreStart       = New("timestamp precedes start")
	ErrOverflow       = New("arithmetic overflow")
	ErrUnderflow      = New("arithmetic underflow")
)
