package integration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceGenerator_ConcurrentNext(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	fx := tdb.CreateTestFirm("")
	seq := persistence.NewSequenceGenerator(tdb.DB)
	ctx := context.Background()

	const workers = 20
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		values []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(ctx, fx.Firm.ID, persistence.SequenceInvoice, 2026)
			assert.NoError(t, err)
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	require.Len(t, values, workers)
	for i, v := range values {
		assert.Equal(t, int64(i+1), v, "numbers must be gapless and unique")
	}
}

func TestRepositories_FirmIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	a := tdb.CreateTestFirm("Cabinet Atangana")
	b := tdb.CreateTestFirm("Cabinet Bello")
	ctx := context.Background()

	clients := persistence.NewGormClientRepository(tdb.DB)
	cases := persistence.NewGormCaseRepository(tdb.DB)

	c, err := client.NewClient(a.Firm.ID, client.KindCompany, "Brasseries du Littoral")
	require.NoError(t, err)
	require.NoError(t, clients.Save(ctx, c))

	cs, err := matter.NewCase(a.Firm.ID, c.ID, "DOS-2026-0001", "Litige fournisseur", matter.TypeCommercial)
	require.NoError(t, err)
	require.NoError(t, cases.Save(ctx, cs))

	t.Run("owner firm sees its records", func(t *testing.T) {
		found, err := clients.FindByIDForFirm(ctx, a.Firm.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Brasseries du Littoral", found.Name)

		foundCase, err := cases.FindByIDForFirm(ctx, a.Firm.ID, cs.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, foundCase.ClientID)
	})

	t.Run("other firm gets not found", func(t *testing.T) {
		_, err := clients.FindByIDForFirm(ctx, b.Firm.ID, c.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = cases.FindByIDForFirm(ctx, b.Firm.ID, cs.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		list, total, err := cases.FindAllForFirm(ctx, b.Firm.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})

	t.Run("usage counts stay per firm", func(t *testing.T) {
		usage := persistence.NewGormUsageCounter(tdb.DB)

		n, err := usage.CountUsage(ctx, a.Firm.ID, subscription.ResourceClients)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = usage.CountUsage(ctx, b.Firm.ID, subscription.ResourceClients)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = usage.CountUsage(ctx, a.Firm.ID, subscription.ResourceUsers)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "the owner is the only active profile")
	})
}

func TestFirmRepository_FindByStatuses(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	trial := tdb.CreateTestFirm("Cabinet Essai")
	suspended := tdb.CreateTestFirm("Cabinet Suspendu")
	ctx := context.Background()
	firms := persistence.NewGormFirmRepository(tdb.DB)

	_, _, err := suspended.Firm.ActivateSubscription(firm.PlanStarter, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, suspended.Firm.Suspend("Chargeback"))
	require.NoError(t, firms.Save(ctx, suspended.Firm))

	found, err := firms.FindByStatuses(ctx, firm.StatusTrial)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, trial.Firm.ID, found[0].ID)

	found, err = firms.FindByStatuses(ctx, firm.StatusSuspended, firm.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, suspended.Firm.ID, found[0].ID)
	assert.Equal(t, "Chargeback", found[0].SuspendedReason)
}

func TestClientRepository_PaginationAndFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	fx := tdb.CreateTestFirm("")
	other := tdb.CreateTestFirm("")
	repo := persistence.NewGormClientRepository(tdb.DB)
	ctx := context.Background()

	const total = 25
	douala := 0
	for i := 0; i < total; i++ {
		c, err := client.NewClient(fx.Firm.ID, client.KindCompany, fake.CompanyName())
		require.NoError(t, err)
		city := fake.City()
		if city == "Douala" {
			douala++
		}
		require.NoError(t, c.SetContact(fake.Email(), fake.MobileNumber(), "", city))
		require.NoError(t, repo.Save(ctx, c))
	}
	noise, err := client.NewClient(other.Firm.ID, client.KindIndividual, fake.FullName())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, noise))

	seen := map[string]bool{}
	for p := 1; p <= 3; p++ {
		filter := shared.DefaultFilter()
		filter.OrderBy, filter.OrderDir = "name", "asc"
		filter.PageSize = 10
		filter.Page = p
		page, count, err := repo.FindAllForFirm(ctx, fx.Firm.ID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(total), count)
		for _, c := range page {
			assert.False(t, seen[c.ID.String()], "client on two pages")
			seen[c.ID.String()] = true
		}
	}
	assert.Len(t, seen, total)

	filter := shared.DefaultFilter()
	filter.Filters = map[string]any{"city": "Douala"}
	_, count, err := repo.FindAllForFirm(ctx, fx.Firm.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(douala), count)

	n, err := repo.CountForFirm(ctx, other.Firm.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
