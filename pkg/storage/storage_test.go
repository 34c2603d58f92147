package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/accredit/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func newSystem(t *testing.T) storage.System {
	t.Helper()
	sys, err := storage.New(&storage.Config{
		ContainerName:    "evidence",
		ConnectionString: azuriteConnString,
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sys
}

func TestNewInvalidConnectionString(t *testing.T) {
	_, err := storage.New(&storage.Config{
		ContainerName:    "evidence",
		ConnectionString: "not-a-connection-string",
	}, slog.New(slog.DiscardHandler))
	if err == nil {
		t.Fatal("expected error for invalid connection string")
	}
}

func TestKeysAreValidatedBeforeAnyRequest(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	tests := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"../secrets.json", storage.ErrInvalidKey},
		{"evidence/../../x.json", storage.ErrInvalidKey},
		{"/evidence/x.json", storage.ErrInvalidKey},
		{`evidence\x.json`, storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "application/json"); !errors.Is(err, tt.want) {
				t.Errorf("Upload: %v, want %v", err, tt.want)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Download: %v, want %v", err, tt.want)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Delete: %v, want %v", err, tt.want)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Exists: %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("throttled"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
