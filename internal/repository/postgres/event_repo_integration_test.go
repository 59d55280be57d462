//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"eventsapi/internal/domain"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "events",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/events?sslmode=disable", host, port.Port())
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestEventRepository_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := NewEventRepository(db)
	when := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond)

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		require.NoError(t, repo.Save(ctx, domain.NewEvent(title, when, "Hall A")))
	}

	all, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	beta := all[1]
	err = repo.WithTx(ctx, func(tx domain.EventRepository) error {
		e, err := tx.FindActiveByID(ctx, beta.ID)
		if err != nil {
			return err
		}
		e.Deleted = true
		return tx.Save(ctx, e)
	})
	require.NoError(t, err)

	_, err = repo.FindActiveByID(ctx, beta.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	page, total, err := repo.FindActivePage(ctx, domain.PaginationParams{
		Page:     1,
		PageSize: 1,
		Sort:     domain.SortOrder{Field: domain.SortByTitle, Desc: true},
	})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, page, 1)
	require.Equal(t, "Gamma", page[0].Title)

	var stored int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&stored))
	require.Equal(t, 3, stored)
}
