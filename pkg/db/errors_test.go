package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "payment_transactions_reference_key" (SQLSTATE 23505)`)))
	require.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: wishlist_items.user_id, wishlist_items.artwork_id")))
	require.False(t, IsUniqueViolation(errors.New("connection refused")))
	require.False(t, IsUniqueViolation(nil))
}
