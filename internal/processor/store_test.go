package processor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		wantErr bool
	}{
		{name: "sqlite", cfg: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "catalog.db"), MaxOpenConns: 1}},
		{name: "redis", cfg: config.DatabaseConfig{Driver: "redis", RedisURL: "redis://" + mr.Addr() + "/0"}},
		{name: "unknown driver", cfg: config.DatabaseConfig{Driver: "postgres"}, wantErr: true},
		{name: "bad redis url", cfg: config.DatabaseConfig{Driver: "redis", RedisURL: "::not a url"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenStore(ctx, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })

			require.NoError(t, store.Ping(ctx))
			require.NoError(t, store.CreatePerson(ctx, &database.Person{Name: "Tales de Mileto"}))
			counts, err := store.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), counts.People)
		})
	}
}
