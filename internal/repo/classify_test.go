package repo_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"ordersync/internal/entities"
	"ordersync/internal/repo"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name             string
		err              error
		wantConnectivity bool
	}{
		{
			name:             "net error",
			err:              &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			wantConnectivity: true,
		},
		{
			name:             "bad conn",
			err:              driver.ErrBadConn,
			wantConnectivity: true,
		},
		{
			name:             "eof",
			err:              io.EOF,
			wantConnectivity: true,
		},
		{
			name:             "deadline",
			err:              context.DeadlineExceeded,
			wantConnectivity: true,
		},
		{
			name:             "pq connection exception",
			err:              &pq.Error{Code: "08006"},
			wantConnectivity: true,
		},
		{
			name:             "pq constraint violation",
			err:              &pq.Error{Code: "23505"},
			wantConnectivity: false,
		},
		{
			name:             "plain error",
			err:              errors.New("syntax error"),
			wantConnectivity: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := repo.Classify(tc.err)
			assert.Equal(t, tc.wantConnectivity, entities.IsConnectivity(got))
			// Исходная ошибка остаётся доступной через errors.Is/As.
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

// Классификация переживает обёртку: ошибка коммита, завёрнутая
// в fmt.Errorf, распознаётся так же, как голая ошибка драйвера.
func TestClassify_WrappedCommitError(t *testing.T) {
	err := fmt.Errorf("failed to commit tx: %w", driver.ErrBadConn)

	got := repo.Classify(err)
	require.Error(t, got)
	assert.True(t, entities.IsConnectivity(got))
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, repo.Classify(nil))
}
