package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/tsuchida/bunrui-go/internal/conf"
)

// TestMySQLStoreIntegration exercises the MySQL store against a real server
// in a container. Requires Docker, skipped in short mode.
func TestMySQLStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("bunrui_test"),
		tcmysql.WithUsername("bunrui"),
		tcmysql.WithPassword("secret"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(ctx))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	settings := &conf.Settings{}
	settings.Output.MySQL.Enabled = true
	settings.Output.MySQL.Username = "bunrui"
	settings.Output.MySQL.Password = "secret"
	settings.Output.MySQL.Database = "bunrui_test"
	settings.Output.MySQL.Host = host
	settings.Output.MySQL.Port = port.Port()

	store := New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	saved := testResult("ゴールデンレトリバー", 95.50)
	require.NoError(t, store.Save(saved))
	require.NotZero(t, saved.ID)

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.PredictionLabel, got.PredictionLabel)
	assert.InDelta(t, 95.50, got.PredictionScore, 0.005)

	page, err := store.List(1, 10, "レトリバー")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, store.Delete(saved.ID))
	_, err = store.Get(saved.ID)
	require.Error(t, err)
}
