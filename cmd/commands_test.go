package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "cine-grid version "+version) {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("CINE_GRID_CONFIG", "")
	t.Setenv("CINE_GRID_USERNAME", "")
	t.Setenv("CINE_GRID_OUTPUT", "")
	t.Setenv("CINE_GRID_FORMAT", "")
	t.Setenv("CINE_GRID_SOURCE", "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "someone" || r.URL.Query().Get("year") != "2023" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `[{"title":"Dune","rating":"5"},{"title":"Heat","rating":"5"},{"title":"Jaws","rating":"8"}]`)
	}))
	defer server.Close()
	t.Setenv("REVIEWS_ENDPOINT", server.URL)

	output := filepath.Join(t.TempDir(), "chart.txt")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"render", "--username", "someone", "--year", "2023", "--format", "text", "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), " 5 | ## 2") {
		t.Errorf("unexpected chart:\n%s", data)
	}
}

func TestRenderCommandRequiresUsername(t *testing.T) {
	t.Setenv("CINE_GRID_CONFIG", "")
	t.Setenv("CINE_GRID_USERNAME", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without username")
	}
}
