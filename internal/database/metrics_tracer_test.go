package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractQueryName(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "SELECT"},
		{"\n\t\tINSERT INTO screen_snapshots (screen_id) VALUES ($1)", "INSERT"},
		{"select content::text from screen_snapshots", "SELECT"},
		{"", "unknown"},
		{"   ", "unknown"},
		{"VERYLONGKEYWORDTHATGOESONANDON", "VERYLONGKEYWORDTHATG"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, extractQueryName(tt.sql))
		})
	}
}
