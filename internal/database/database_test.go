package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), want: ErrNotFound},
		{name: "unique violation", err: &pq.Error{Code: "23505", Constraint: "routes_route_number_key"}, want: ErrDuplicateKey},
		{name: "other pq error", err: &pq.Error{Code: "23503"}, want: nil},
		{name: "other error", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if tt.want == nil {
				assert.False(t, errors.Is(got, ErrNotFound))
				assert.False(t, errors.Is(got, ErrDuplicateKey))
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, translateError(nil))
}

func TestPlaceholdersBind(t *testing.T) {
	var p placeholders
	markers := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		markers = append(markers, p.bind(i))
	}

	assert.Equal(t, "$1", markers[0])
	assert.Equal(t, "$10", markers[9])
	assert.Equal(t, "$12", markers[11])
	assert.Len(t, p.args, 12)
	assert.Equal(t, 11, p.args[11])
}
