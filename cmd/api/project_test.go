package main

import (
	"bytes"
	"testing"

	"multinvest-backend/internal/application/projection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProject(t *testing.T) {
	cases := []struct {
		name string
		in   projectFlags
		want string
	}{
		{"ninety days completed", projectFlags{amount: "1000.00", createdAt: "2024-03-17", now: "2024-06-15", status: "completed"}, "1150.00\n"},
		{"pending ignores date", projectFlags{amount: "500.004", createdAt: "whenever", now: "2024-06-15", status: "pending"}, "500.00\n"},
		{"future clamps", projectFlags{amount: "100", createdAt: "2024-07-30", now: "2024-06-15", status: "completed"}, "100.00\n"},
		{"future floors", projectFlags{amount: "100", createdAt: "2024-07-30", now: "2024-06-15", status: "completed", policy: "floor"}, "90.00\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runProject(&buf, tc.in))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestRunProject_Errors(t *testing.T) {
	var buf bytes.Buffer
	err := runProject(&buf, projectFlags{amount: "abc", createdAt: "2024-01-01", status: "completed"})
	assert.ErrorIs(t, err, projection.ErrInvalidInput)

	err = runProject(&buf, projectFlags{amount: "1", createdAt: "2024-01-01", status: "completed", now: "soon"})
	assert.Error(t, err)

	err = runProject(&buf, projectFlags{amount: "1", createdAt: "2024-01-01", policy: "grow"})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
