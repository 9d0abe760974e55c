package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteJoin(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{"/sdcard", "DCIM", "/sdcard/DCIM"},
		{"/sdcard/", "DCIM", "/sdcard/DCIM"},
		{"/", "sdcard", "/sdcard"},
		{"", "sdcard", "/sdcard"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoteJoin(tt.dir, tt.name))
	}
}

func TestRemoteParent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/sdcard/DCIM", "/sdcard"},
		{"/sdcard/DCIM/", "/sdcard"},
		{"/sdcard", "/"},
		{"/sdcard/", "/"},
		{"/", "/"},
		{"", "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoteParent(tt.in))
	}
}

func TestRemoteBase(t *testing.T) {
	assert.Equal(t, "DCIM", RemoteBase("/sdcard/DCIM/"))
	assert.Equal(t, "DCIM", RemoteBase("/sdcard/DCIM"))
	assert.Equal(t, "/", RemoteBase("/"))
}

func TestCleanRemote(t *testing.T) {
	assert.Equal(t, "/sdcard", CleanRemote("/sdcard/"))
	assert.Equal(t, "/sdcard/DCIM", CleanRemote("sdcard/DCIM"))
	assert.Equal(t, "/", CleanRemote(""))
	assert.Equal(t, "/sdcard", CleanRemote("/sdcard/Camera/.."))
}
