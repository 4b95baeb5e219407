package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTableInsertGetErase(t *testing.T) {
	tbl := newSessionTable()
	s := &session{sessionID: 1}

	tbl.insert(s)
	got, ok := tbl.get(1)
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, tbl.len())

	tbl.erase(1)
	_, ok = tbl.get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.len())
}

func TestSessionTableGetMissing(t *testing.T) {
	tbl := newSessionTable()
	_, ok := tbl.get(99)
	assert.False(t, ok)
}
