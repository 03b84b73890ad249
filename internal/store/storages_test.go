package store

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorages(t *testing.T) {
	ctx := context.Background()
	l := logger.Nop()

	t.Run("memory", func(t *testing.T) {
		s, err := NewStorages(ctx, config.Storage{Driver: config.DriverMemory}, l)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s.RecordStore)
		assert.NoError(t, s.Close())
	})

	t.Run("sqlite with migrations", func(t *testing.T) {
		s, err := NewStorages(ctx, config.Storage{
			Driver: config.DriverSQLite,
			DB:     config.DB{DSN: ":memory:", AutoMigrate: true},
		}, l)
		require.NoError(t, err)
		defer s.Close()
		assert.NoError(t, s.RecordStore.Ping(ctx))
	})

	t.Run("rest", func(t *testing.T) {
		s, err := NewStorages(ctx, config.Storage{
			Driver: config.DriverREST,
			REST:   config.REST{URL: "http://localhost:54321", APIKey: "k"},
		}, l)
		require.NoError(t, err)
		assert.IsType(t, &restRecordStore{}, s.RecordStore)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewStorages(ctx, config.Storage{Driver: "mongo"}, l)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})
}
