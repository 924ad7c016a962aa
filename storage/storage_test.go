package storage_test

import (
	"context"
	"testing"

	"github.com/kbukum/liquidkit/component"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/storage"
	_ "github.com/kbukum/liquidkit/storage/local"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"empty is local default", storage.Config{}, false},
		{"s3 needs bucket", storage.Config{Provider: storage.ProviderS3}, true},
		{"s3 with bucket", storage.Config{Provider: storage.ProviderS3, Bucket: "robot"}, false},
		{"s3 half credentials", storage.Config{Provider: storage.ProviderS3, Bucket: "robot", AccessKey: "k"}, true},
		{"unknown provider", storage.Config{Provider: "ftp"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}

	cfg := storage.Config{}
	cfg.ApplyDefaults()
	if cfg.BasePath != storage.DefaultBasePath {
		t.Errorf("expected default base path %q, got %q", storage.DefaultBasePath, cfg.BasePath)
	}
}

func TestNewAndBytes(t *testing.T) {
	ctx := context.Background()
	s, err := storage.New(storage.Config{Provider: storage.ProviderLocal, BasePath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := storage.WriteBytes(ctx, s, "report.csv", []byte("row,dest\n")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	data, err := storage.ReadAll(ctx, s, "report.csv")
	if err != nil || string(data) != "row,dest\n" {
		t.Fatalf("ReadAll = %q, %v", data, err)
	}
	if _, err := storage.ReadAll(ctx, s, "none.csv"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestNewUnregisteredProvider(t *testing.T) {
	if _, err := storage.New(storage.Config{Provider: storage.ProviderS3, Bucket: "b"}, nil); err == nil {
		t.Fatal("expected error for provider without a registered factory")
	}
}

func TestComponentLifecycle(t *testing.T) {
	ctx := context.Background()
	c := storage.NewComponent(storage.Config{BasePath: t.TempDir()}, nil)

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}
	if d := c.Describe(); d.Type != "storage" {
		t.Errorf("unexpected description %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.Storage() != nil {
		t.Error("expected storage released after stop")
	}
}
