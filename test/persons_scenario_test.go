package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usermgmt/internal/app"
	"usermgmt/internal/person/client"
	"usermgmt/internal/person/models"
	"usermgmt/internal/platform/config"
	"usermgmt/pkg/domain"
	"usermgmt/pkg/testutil"
)

func startApp(t *testing.T) (*app.App, *client.Client) {
	t.Helper()
	cfg := config.Server{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
	a, err := app.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = a.Stop(ctx)
	})

	c, err := client.New("http://" + a.Addr() + "/")
	require.NoError(t, err)
	return a, c
}

func TestPersonLifecycleScenario(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a running service with no persons", func(t *testing.T) {
		_, c := startApp(t)

		var alice models.Person
		testutil.When(t, "Alice is created", func(t *testing.T) {
			var persons []models.Person
			var err error
			alice, persons, err = c.Save(ctx, "", models.Draft{
				Name:      "Alice",
				BirthDate: domain.NewDate(1990, time.January, 1),
				Salary:    domain.MustMoney("1000.50"),
			})
			require.NoError(t, err)

			testutil.Then(t, "the list holds exactly Alice with a minted id", func(t *testing.T) {
				require.Len(t, persons, 1)
				assert.NotEmpty(t, alice.ID)
				assert.Equal(t, alice.ID, persons[0].ID)
				assert.True(t, persons[0].Salary.Equal(domain.MustMoney("1000.5")))
			})
		})

		testutil.When(t, "Alice's salary is raised", func(t *testing.T) {
			draft := alice.Draft()
			draft.Salary = domain.MustMoney("2000")
			_, persons, err := c.Save(ctx, alice.ID, draft)
			require.NoError(t, err)

			testutil.Then(t, "the id is kept and the salary replaced", func(t *testing.T) {
				require.Len(t, persons, 1)
				assert.Equal(t, alice.ID, persons[0].ID)
				assert.True(t, persons[0].Salary.Equal(domain.MustMoney("2000")))
			})
		})

		testutil.When(t, "Alice is deleted", func(t *testing.T) {
			persons, err := c.Remove(ctx, alice.ID)
			require.NoError(t, err)

			testutil.Then(t, "the list is empty and a second delete is not found", func(t *testing.T) {
				assert.Empty(t, persons)
				_, err := c.Delete(ctx, alice.ID)
				assert.True(t, client.IsNotFound(err))
			})
		})
	})
}

func TestConcurrentCreatesScenario(t *testing.T) {
	const n = 32
	ctx := context.Background()

	testutil.Given(t, "a running service", func(t *testing.T) {
		a, c := startApp(t)

		testutil.When(t, fmt.Sprintf("%d clients create a person at once", n), func(t *testing.T) {
			var wg sync.WaitGroup
			ids := make(chan string, n)
			errs := make(chan error, n)
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					p, err := c.Create(ctx, models.Draft{
						Name:      fmt.Sprintf("person-%d", i),
						BirthDate: domain.NewDate(1980, time.March, 3),
						Salary:    domain.MustMoney("1"),
					})
					if err != nil {
						errs <- err
						return
					}
					ids <- p.ID
				}()
			}
			wg.Wait()
			close(ids)
			close(errs)

			testutil.Then(t, "every create succeeds with a distinct id", func(t *testing.T) {
				for err := range errs {
					t.Errorf("create failed: %v", err)
				}
				seen := make(map[string]struct{}, n)
				for id := range ids {
					seen[id] = struct{}{}
				}
				assert.Len(t, seen, n)

				persons, err := c.List(ctx)
				require.NoError(t, err)
				assert.Len(t, persons, n)
				assert.Equal(t, n, storedCount(t, a))
			})
		})
	})
}

func TestUnknownRoutesScenario(t *testing.T) {
	testutil.Given(t, "a running service", func(t *testing.T) {
		a, _ := startApp(t)

		testutil.When(t, "requesting paths and methods outside /persons", func(t *testing.T) {
			for _, tc := range []struct{ method, path string }{
				{http.MethodGet, "/unknown"},
				{http.MethodPatch, "/persons"},
				{http.MethodGet, "/persons/some-id"},
			} {
				req, err := http.NewRequest(tc.method, "http://"+a.Addr()+tc.path, nil)
				require.NoError(t, err)
				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				body, err := io.ReadAll(resp.Body)
				resp.Body.Close()
				require.NoError(t, err)

				testutil.Then(t, tc.method+" "+tc.path+" answers the endpoint-not-found envelope", func(t *testing.T) {
					assert.Equal(t, http.StatusNotFound, resp.StatusCode)
					assert.JSONEq(t, `{"error":"Endpoint not found."}`, string(body))
				})
			}
		})
	})
}

func storedCount(t *testing.T, a *app.App) int {
	t.Helper()
	n, err := a.Store.Count(context.Background())
	require.NoError(t, err)
	return n
}
