package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pingplatform/internal/catalog"
	"pingplatform/internal/fixtures"
	"pingplatform/internal/geo"
	"pingplatform/internal/models"
)

func newBuilder(t *testing.T) (*Builder, *catalog.Catalog) {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	cat := catalog.New(set)
	return New(cat), cat
}

func stat(p Page, key string) any {
	for _, s := range p.Stats {
		if s.Key == key {
			return s.Value
		}
	}
	return nil
}

func TestAdminUsersFilterAndPaging(t *testing.T) {
	b, _ := newBuilder(t)

	all := b.Users(Params{})
	require.Equal(t, 8, all.Total)
	require.Equal(t, 8, all.Matched)

	pending := b.Users(Params{Status: "pending"})
	require.Equal(t, 1, pending.Matched)
	require.Equal(t, "usr-005", pending.Rows[0].Cells["id"])
	require.Equal(t, "warning", string(pending.Rows[0].Status.Tone))

	consumers := b.Users(Params{Role: "consumer", Text: "bob"})
	require.Equal(t, 1, consumers.Matched)

	none := b.Users(Params{Text: "nobody-here"})
	require.True(t, none.Empty)
	require.NotEmpty(t, none.EmptyMessage)

	paged := b.Users(Params{Page: 2, PageSize: 3})
	require.Len(t, paged.Rows, 3)
	require.Equal(t, 2, paged.Page)
}

func TestDropPointsWithoutLocationKeepsSourceOrder(t *testing.T) {
	b, cat := newBuilder(t)
	p := b.DropPoints(Params{Category: "nearby"}, nil, geo.ErrPermissionDenied, 2)

	items := p.Data.(map[string]any)["items"].([]models.DropPoint)
	src := cat.Snapshot().DropPoints
	require.Len(t, items, len(src))
	for i := range src {
		require.Equal(t, src[i].ID, items[i].ID)
		require.Nil(t, items[i].Distance)
	}
	require.NotNil(t, p.Banner)
	require.True(t, p.Banner.Dismissible)
	require.False(t, p.Banner.Retry)
}

func TestDropPointsNearbyWithLocation(t *testing.T) {
	b, _ := newBuilder(t)
	pos := &geo.Position{Latitude: 13.7455, Longitude: 100.5340, Timestamp: time.Now()}
	p := b.DropPoints(Params{Category: "nearby"}, pos, nil, 2)
	require.Nil(t, p.Banner)

	items := p.Data.(map[string]any)["items"].([]models.DropPoint)
	require.NotEmpty(t, items)
	require.Equal(t, "dp-001", items[0].ID)
	for _, it := range items {
		require.LessOrEqual(t, *it.Distance, 2.0)
	}
}

func TestDropPointsTimeoutOffersRetry(t *testing.T) {
	b, _ := newBuilder(t)
	p := b.DropPoints(Params{}, nil, geo.ErrTimeout, 2)
	require.NotNil(t, p.Banner)
	require.True(t, p.Banner.Retry)
}

func TestWalletTotals(t *testing.T) {
	b, cat := newBuilder(t)
	acct, err := cat.Account("usr-001")
	require.NoError(t, err)
	p := b.Wallet(acct)
	require.Equal(t, 450, stat(p, "balance"))
	require.Equal(t, 120, stat(p, "spent"))
	require.Equal(t, 1, p.Tables["claims"].Matched)
}

func TestWalletClaimsCarryClaimID(t *testing.T) {
	b, cat := newBuilder(t)
	acct, err := cat.Account("usr-001")
	require.NoError(t, err)
	claims := b.Wallet(acct).Tables["claims"]
	require.NotEmpty(t, claims.Rows)

	ids := map[string]bool{}
	for _, c := range cat.Snapshot().ClaimedRewards {
		ids[c.ID] = true
	}
	for _, row := range claims.Rows {
		require.True(t, ids[row.Cells["id"].(string)], "row %v", row.Cells)
	}
}

func TestRewardsAffordability(t *testing.T) {
	b, cat := newBuilder(t)
	acct, err := cat.Account("usr-002")
	require.NoError(t, err)
	p := b.Rewards(&acct, Params{Category: "merchandise"})
	items := p.Data.(map[string]any)["items"].([]RewardItem)
	require.Len(t, items, 2)
	for _, it := range items {
		require.False(t, it.Affordable)
	}
	require.False(t, items[1].InStock)
}

func TestCompanyScopedToBrand(t *testing.T) {
	b, _ := newBuilder(t)
	p := b.Company("Aqua Pure Beverages", Params{})
	require.Equal(t, 2, p.Tables["campaigns"].Matched)
	require.Equal(t, 1, p.Tables["alerts"].Matched)

	all := b.Company("", Params{})
	require.Equal(t, 3, all.Tables["campaigns"].Matched)
}

func TestRoleDashboardsRender(t *testing.T) {
	b, _ := newBuilder(t)
	pages := []Page{
		b.Home(nil), b.Scan(nil, nil), b.Settings(nil), b.AdminLogin(), b.Admin(Params{}),
		b.Analytics(), b.Monitor(Params{}), b.Manufacturer(Params{}), b.Recycler(Params{}),
		b.Regulator(Params{}), b.Public(),
	}
	for _, p := range pages {
		require.NotEmpty(t, p.Path)
		require.NotEmpty(t, p.Title)
	}
	require.Equal(t, "25", b.Monitor(Params{}).Stats[1].Value)
}

func TestFillStatus(t *testing.T) {
	require.Equal(t, "full", fillStatus(models.DropPoint{Capacity: 800, Collected: 790}))
	require.Equal(t, "filling", fillStatus(models.DropPoint{Capacity: 100, Collected: 80}))
	require.Equal(t, "ok", fillStatus(models.DropPoint{Capacity: 0, Collected: 10}))
}
