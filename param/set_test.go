package param_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/branchbound/parsearch/param"
)

func TestReadFileParsesAndMergesOverrides(t *testing.T) {
	s, err := param.New(
		param.WithDefaultInt("Alps_maxNodes", 1000),
		param.WithDefaultReal("Alps_donorThreshold", 1.5),
		param.WithDefaultBool("Alps_verbose", false),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	contents := "Quiet 1\nAlps_maxNodes 2500\nUnknownKeyword 7\nAlps_verbose 1\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := s.ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, err := s.Int("Alps_maxNodes"); err != nil || got != 2500 {
		t.Fatalf("Alps_maxNodes = %d, %v; want 2500, nil", got, err)
	}
	if got, err := s.Bool("Alps_verbose"); err != nil || !got {
		t.Fatalf("Alps_verbose = %v, %v; want true, nil", got, err)
	}
	if got, err := s.Real("Alps_donorThreshold"); err != nil || got != 1.5 {
		t.Fatalf("Alps_donorThreshold = %v, %v; want 1.5, nil (untouched default)", got, err)
	}

	// a CLI override takes effect after the file is read, same as a
	// second, later merge.
	if err := s.ReadArgs([]string{"Alps_maxNodes", "9000"}); err != nil {
		t.Fatalf("ReadArgs: %v", err)
	}
	if got, _ := s.Int("Alps_maxNodes"); got != 9000 {
		t.Fatalf("Alps_maxNodes after override = %d, want 9000", got)
	}
}

func TestReadFileSkipsShortAndBlankLines(t *testing.T) {
	s, err := param.New(param.WithDefaultInt("Alps_maxNodes", 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "params.txt")
	if err := os.WriteFile(path, []byte("\nAlps_maxNodes\nAlps_maxNodes 42\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got, _ := s.Int("Alps_maxNodes"); got != 42 {
		t.Fatalf("Alps_maxNodes = %d, want 42", got)
	}
}

func TestReadFileUnopenableReturnsError(t *testing.T) {
	s, err := param.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = s.ReadFile(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatalf("ReadFile: expected error for missing file")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	s, err := param.New(
		param.WithDefaultInt("a", 7),
		param.WithDefaultReal("b", 3.5),
		param.WithDefaultBool("c", true),
		param.WithDefaultString("d", "hello"),
		param.WithDefaultStringArray("e", []string{"x", "y", "z"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := s.Pack("param.test")

	other, err := param.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := other.Unpack(buf); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	if got, _ := other.Int("a"); got != 7 {
		t.Fatalf("a = %d, want 7", got)
	}
	if got, _ := other.Real("b"); got != 3.5 {
		t.Fatalf("b = %v, want 3.5", got)
	}
	if got, _ := other.Bool("c"); !got {
		t.Fatalf("c = %v, want true", got)
	}
	if got, _ := other.String("d"); got != "hello" {
		t.Fatalf("d = %q, want hello", got)
	}
	if got, _ := other.StringArray("e"); len(got) != 3 || got[0] != "x" || got[2] != "z" {
		t.Fatalf("e = %v, want [x y z]", got)
	}
}

func TestUnknownKeyAndWrongKindReturnErrors(t *testing.T) {
	s, err := param.New(param.WithDefaultInt("a", 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Int("missing"); err == nil {
		t.Fatalf("expected ErrUnknownKey for missing key")
	}
	if _, err := s.Real("a"); err == nil {
		t.Fatalf("expected ErrWrongKind reading int key as real")
	}
}
