package mcp

import (
	"reflect"
	"testing"

	"github.com/claimlens/claimlens/internal/config"
)

func TestSplitPaths(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a.txt", []string{"a.txt"}},
		{"a.txt,b.txt", []string{"a.txt", "b.txt"}},
		{"a.txt\nb.txt\n", []string{"a.txt", "b.txt"}},
		{" a.txt ,  b.txt ", []string{"a.txt", "b.txt"}},
		{"/tmp/with space.txt", []string{"/tmp/with space.txt"}},
		{",,\n,", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := splitPaths(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitPaths(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer(ServerConfig{Config: config.Default()})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
