package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"taskboard/internal/config"
	"taskboard/internal/logging"

	"github.com/gin-gonic/gin"
)

func TestNewFileDriverPersists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "tasks.yaml")

	var cfg config.Config
	cfg.Store.Driver = config.DriverFile
	cfg.Store.File = path

	a, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustCreate(t, a.Router(), `{"title":"persist me"}`)
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	b, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close(context.Background())
	tasks := decodeTasks(t, do(b.Router(), http.MethodGet, "/tasks", ""))
	if len(tasks) != 1 || tasks[0].Title != "persist me" {
		t.Fatalf("reloaded tasks = %+v", tasks)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Store.Driver = "cassandra"
	if _, err := New(cfg, logging.Discard()); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
