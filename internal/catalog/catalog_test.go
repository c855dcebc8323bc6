package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeysAreWellFormedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, key := range Keys() {
		assert.True(t, ValidKey(key), "malformed key %q", key)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
	assert.Equal(t, len(Keys()), len(KeySet()))
}

func TestValidKey(t *testing.T) {
	valid := []string{"user.view", "leave.view.team", "user_permission.grant", "a.b"}
	for _, key := range valid {
		assert.True(t, ValidKey(key), key)
	}

	invalid := []string{"", "user", "User.View", "user.", ".view", "user..view", "user.view!", "9user.view"}
	for _, key := range invalid {
		assert.False(t, ValidKey(key), key)
	}
}

func TestModule(t *testing.T) {
	assert.Equal(t, "leave", Module("leave.view.team"))
	assert.Equal(t, "user_permission", Module("user_permission.grant"))
	assert.Equal(t, "system", Module("nodot"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "User permission", Describe("user.create"))
	assert.Equal(t, "User Permission permission", Describe("user_permission.grant"))
	assert.Equal(t, "Leave permission", Describe("leave.view.team"))
}
