package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagudeloc/almacen/internal/reception"
	"github.com/dagudeloc/almacen/internal/session"
)

func TestStore(t *testing.T) {
	store := session.New()
	id := uuid.New()
	ledger := reception.Open(reception.InvoiceHeader{Folio: "F-1"}, nil)

	_, err := store.Get(id)
	assert.ErrorIs(t, err, reception.ErrNotFound)

	store.Put(id, ledger)

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Same(t, ledger, got)

	store.Delete(id)

	_, err = store.Get(id)
	assert.ErrorIs(t, err, reception.ErrNotFound)
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	store := session.New()
	store.Delete(uuid.New())
}
