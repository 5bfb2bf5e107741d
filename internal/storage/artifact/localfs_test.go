package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

func TestLocalFS_ImplementsStore(t *testing.T) {
	var _ Store = (*LocalFS)(nil)
	var _ Store = (*S3)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("fake png bytes")

	if err := st.Write(ctx, "charts/light/waterfall.png", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := st.Read(ctx, "charts/light/waterfall.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	st, _ := NewLocalFS(t.TempDir())

	_, err := st.Read(context.Background(), "charts/missing.png")
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if !errors.Is(err, core.ErrArtifactNotFound) {
		t.Errorf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestLocalFS_List(t *testing.T) {
	st, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	st.Write(ctx, "compare/gauge.png", []byte("a"))
	st.Write(ctx, "compare/scatter.png", []byte("b"))
	st.Write(ctx, "schemas/gauge.json", []byte("{}"))

	paths, err := st.List(ctx, "compare")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %d: %v", len(paths), paths)
	}
}

func TestLocalFS_ExistsDelete(t *testing.T) {
	st, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, _ := st.Exists(ctx, "report.md")
	if exists {
		t.Error("expected false before write")
	}

	st.Write(ctx, "report.md", []byte("# Comparison"))
	exists, _ = st.Exists(ctx, "report.md")
	if !exists {
		t.Error("expected true after write")
	}

	st.Delete(ctx, "report.md")
	exists, _ = st.Exists(ctx, "report.md")
	if exists {
		t.Error("expected false after delete")
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	st, err := New(config.ArtifactConfig{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := st.(*LocalFS); !ok {
		t.Errorf("expected LocalFS, got %T", st)
	}

	_, err = New(config.ArtifactConfig{Type: "gcs"})
	if err == nil {
		t.Fatal("expected error for unknown store type")
	}
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}
