// Copyright (c) 2026 Worklane. All rights reserved.

package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worklane/worklane/pkg/normalize"
)

/*
TestUsername verifies Unicode handles collapse to a stable ASCII form.
*/
func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain_ascii", "recruiter42", "recruiter42"},
		{"uppercase", "JobSeeker", "jobseeker"},
		{"accents_stripped", "José.García", "jose.garcia"},
		{"spaces_dropped", "jane doe", "janedoe"},
		{"edge_separators_trimmed", "_hidden_", "hidden"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalize.Username(tt.input))
		})
	}
}

/*
TestEmail verifies only the domain part is case-folded.
*/
func TestEmail(t *testing.T) {
	assert.Equal(t, "Jane@corp.example", normalize.Email("Jane@Corp.Example"))
	assert.Equal(t, "no-at-sign", normalize.Email("no-at-sign"))
}
