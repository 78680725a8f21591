// Copyright (c) 2025 The NFTStake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import "github.com/nftstake/vault/state"

// Context carries the state all cells of one component read and write.
type Context struct {
	state *state.State
}

func NewContext(state *state.State) *Context {
	return &Context{state: state}
}

func (c *Context) State() *state.State {
	return c.state
}
