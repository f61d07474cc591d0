package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigDirDerivesFromHome(t *testing.T) {
	dir := defaultConfigDir()
	home, err := os.UserHomeDir()
	if err != nil {
		assert.Empty(t, dir)
		return
	}
	assert.Equal(t, filepath.Join(home, ".config", "voicecore"), dir)
}
