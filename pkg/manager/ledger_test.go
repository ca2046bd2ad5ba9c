// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_EnsureCreateReadInsertDelete(t *testing.T) {
	conn := newTestDB(t)
	emitter := newTestEmitter()
	ctx := context.Background()

	require.NoError(t, ensureLedger(ctx, conn, emitter))
	// Idempotent: running init twice must not error.
	require.NoError(t, ensureLedger(ctx, conn, emitter))

	applied, err := appliedSet(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, applied)

	require.NoError(t, insertLedgerRow(ctx, conn, "blog", "0001_initial"))
	applied, err = appliedSet(ctx, conn)
	require.NoError(t, err)
	assert.True(t, applied[AppliedKey{App: "blog", Name: "0001_initial"}])

	require.NoError(t, deleteLedgerRow(ctx, conn, "blog", "0001_initial"))
	applied, err = appliedSet(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestLedger_AppliedSetEmptyWhenTableMissing(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	applied, err := appliedSet(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
