package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateStorageName_Format 测试存储名格式
func TestGenerateStorageName_Format(t *testing.T) {
	name := GenerateStorageName()
	require.NotEmpty(t, name)
	assert.Len(t, name, 32)
	assert.NotContains(t, name, "-")
}

// TestGenerateStorageName_Uniqueness 测试存储名唯一性
func TestGenerateStorageName_Uniqueness(t *testing.T) {
	const numNames = 100
	names := make(map[string]bool)

	for i := 0; i < numNames; i++ {
		name := GenerateStorageName()
		if names[name] {
			t.Errorf("Duplicate storage name generated: %s", name)
		}
		names[name] = true
	}

	assert.Equal(t, numNames, len(names))
}
