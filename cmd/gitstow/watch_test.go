package main

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestIgnoreEvent(t *testing.T) {
	root := "/project"

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "write at root",
			event: fsnotify.Event{Name: "/project/data.txt", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "write in nested dir",
			event: fsnotify.Event{Name: "/project/lib/util.py", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "write inside .git",
			event: fsnotify.Event{Name: "/project/.git/HEAD", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "hidden file",
			event: fsnotify.Event{Name: "/project/.env", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "chmod event ignored",
			event: fsnotify.Event{Name: "/project/data.txt", Op: fsnotify.Chmod},
			want:  true,
		},
		{
			name:  "create picked up",
			event: fsnotify.Event{Name: "/project/new.txt", Op: fsnotify.Create},
			want:  false,
		},
		{
			name:  "remove picked up",
			event: fsnotify.Event{Name: "/project/old.txt", Op: fsnotify.Remove},
			want:  false,
		},
		{
			name:  "outside the root",
			event: fsnotify.Event{Name: "/elsewhere/data.txt", Op: fsnotify.Write},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ignoreEvent(tt.event, root)
			if got != tt.want {
				t.Errorf("ignoreEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}
