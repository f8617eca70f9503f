package main

import (
	"path/filepath"
	"testing"
)

func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proj", ".settings", "org.eclipse.jdt.core.prefs")

	changed, err := UpdateFile(path, []byte("a=1\n"))
	if err != nil || !changed {
		t.Fatalf("first write: changed=%v err=%v", changed, err)
	}
	changed, err = UpdateFile(path, []byte("a=1\n"))
	if err != nil || changed {
		t.Errorf("identical write: changed=%v err=%v", changed, err)
	}
	changed, err = UpdateFile(path, []byte("a=2\n"))
	if err != nil || !changed {
		t.Errorf("modified write: changed=%v err=%v", changed, err)
	}
	if got := readFile(t, path); got != "a=2\n" {
		t.Errorf("content = %q", got)
	}
}

func TestUpdateFileEmptyContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	changed, err := UpdateFile(path, nil)
	if err != nil || !changed {
		t.Fatalf("creating empty file: changed=%v err=%v", changed, err)
	}
	if changed, _ := UpdateFile(path, []byte{}); changed {
		t.Error("rewriting an empty file reported a change")
	}
}
