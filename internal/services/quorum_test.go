// internal/services/quorum_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateQuorum(t *testing.T) {
	tests := []struct {
		name         string
		votesFor     uint64
		votesAgainst uint64
		quorum       uint64
		resolved     bool
		revoked      bool
	}{
		{"below quorum", 50, 40, 100, false, false},
		{"just below quorum", 99, 0, 100, false, false},
		{"at quorum majority for", 60, 40, 100, true, true},
		{"at quorum majority against", 40, 60, 100, true, false},
		{"over quorum majority for", 150, 20, 100, true, true},
		{"tie at quorum stays open", 50, 50, 100, false, false},
		{"tie over quorum stays open", 100, 100, 100, false, false},
		{"one-sided", 100, 0, 100, true, true},
		{"zero quorum resolves immediately", 1, 0, 0, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolved, revoked := EvaluateQuorum(tc.votesFor, tc.votesAgainst, tc.quorum)
			assert.Equal(t, tc.resolved, resolved, "resolved")
			assert.Equal(t, tc.revoked, revoked, "revoked")
		})
	}
}
