// Package dashboard assembles the view model for every page of the
// routing shell from a catalog snapshot.
package dashboard

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pingplatform/internal/catalog"
	"pingplatform/internal/geo"
	"pingplatform/internal/models"
	"pingplatform/internal/view"
)

const recentLimit = 10

type Stat struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Banner is a dismissible page notice with an optional retry action.
type Banner struct {
	Level       models.NotificationLevel `json:"level"`
	Message     string                   `json:"message"`
	Dismissible bool                     `json:"dismissible"`
	Retry       bool                     `json:"retry"`
}

type Page struct {
	Path   string                    `json:"path"`
	Title  string                    `json:"title"`
	Stats  []Stat                    `json:"stats,omitempty"`
	Charts []view.Series             `json:"charts,omitempty"`
	Tables map[string]view.TableView `json:"tables,omitempty"`
	Banner *Banner                   `json:"banner,omitempty"`
	Data   any                       `json:"data,omitempty"`
}

// Params is the search and filter state of the page's main table.
type Params struct {
	Text     string
	Status   string
	Role     string
	Category string
	Page     int
	PageSize int
}

type Builder struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Builder { return &Builder{catalog: cat} }

func (b *Builder) Home(acct *models.Account) Page {
	d := b.catalog.Snapshot()
	p := Page{Path: "/", Title: "Ping", Stats: platformStats(d)}
	if acct != nil {
		scans := ownScans(d.Scans, acct.ID)
		p.Tables = map[string]view.TableView{
			"recent_scans": ScanTable.Render(scans, view.TableRequest[models.ScanLog]{PageSize: recentLimit}),
		}
		p.Data = map[string]any{"account": acct}
	}
	return p
}

func (b *Builder) Scan(acct *models.Account, state any) Page {
	d := b.catalog.Snapshot()
	p := Page{Path: "/scan", Title: "Scan a product", Data: map[string]any{"scan": state}}
	if acct != nil {
		p.Stats = []Stat{{Key: "tokens", Label: "Token balance", Value: acct.Tokens}}
		p.Tables = map[string]view.TableView{
			"history": ScanTable.Render(ownScans(d.Scans, acct.ID), view.TableRequest[models.ScanLog]{PageSize: recentLimit}),
		}
	}
	return p
}

// DropPoints filters the drop point list. locErr is the outcome of the
// location lookup; on failure the list keeps source order and the page
// carries a banner with a retry action.
func (b *Builder) DropPoints(params Params, pos *geo.Position, locErr error, nearbyKm float64) Page {
	d := b.catalog.Snapshot()
	res := view.DropPoints(d.DropPoints, view.DropPointQuery{
		Text:           params.Text,
		Category:       params.Category,
		Position:       pos,
		NearbyRadiusKm: nearbyKm,
	})
	p := Page{
		Path:  "/drop-points",
		Title: "Drop points",
		Stats: []Stat{
			{Key: "shown", Label: "Shown", Value: len(res.Items)},
			{Key: "total", Label: "Total", Value: res.Total},
		},
		Data: map[string]any{
			"items":         res.Items,
			"empty":         res.Empty,
			"empty_message": res.EmptyMessage,
			"categories":    categories(d.DropPoints),
			"location":      pos,
		},
	}
	if locErr != nil {
		p.Banner = &Banner{Level: models.LevelWarning, Message: locErr.Error(), Dismissible: true, Retry: true}
		if errors.Is(locErr, geo.ErrPermissionDenied) {
			p.Banner.Retry = false
		}
	}
	return p
}

func (b *Builder) Wallet(acct models.Account) Page {
	d := b.catalog.Snapshot()
	var claims []models.ClaimedReward
	for i := len(d.ClaimedRewards) - 1; i >= 0; i-- {
		if d.ClaimedRewards[i].AccountID == acct.ID {
			claims = append(claims, d.ClaimedRewards[i])
		}
	}
	var collections []models.CollectionLog
	for i := len(d.CollectionLogs) - 1; i >= 0; i-- {
		if d.CollectionLogs[i].AccountID == acct.ID {
			collections = append(collections, d.CollectionLogs[i])
		}
	}
	scans := ownScans(d.Scans, acct.ID)
	earned := view.Sum(scans, func(s models.ScanLog) int { return s.Points }) +
		view.Sum(collections, func(c models.CollectionLog) int { return c.Tokens })
	spent := view.Sum(claims, func(c models.ClaimedReward) int { return c.Cost })
	return Page{
		Path:  "/wallet",
		Title: "Wallet",
		Stats: []Stat{
			{Key: "balance", Label: "Balance", Value: acct.Tokens},
			{Key: "earned", Label: "Earned", Value: earned},
			{Key: "spent", Label: "Spent", Value: spent},
		},
		Tables: map[string]view.TableView{
			"claims":      ClaimTable.Render(claims, view.TableRequest[models.ClaimedReward]{}),
			"scans":       ScanTable.Render(scans, view.TableRequest[models.ScanLog]{}),
			"collections": CollectionTable.Render(collections, view.TableRequest[models.CollectionLog]{}),
		},
	}
}

type RewardItem struct {
	models.Reward
	Affordable bool `json:"affordable"`
	InStock    bool `json:"in_stock"`
}

func (b *Builder) Rewards(acct *models.Account, params Params) Page {
	d := b.catalog.Snapshot()
	res := view.Query[models.Reward]{
		Text:         params.Text,
		Fields:       func(r models.Reward) []string { return []string{r.Name, r.Description} },
		Filters:      []view.Predicate[models.Reward]{view.FieldEquals(func(r models.Reward) string { return r.Category }, params.Category)},
		EmptyMessage: "No rewards match your search.",
	}.Apply(d.Rewards)
	items := make([]RewardItem, 0, len(res.Items))
	for _, r := range res.Items {
		items = append(items, RewardItem{
			Reward:     r,
			Affordable: acct != nil && acct.Tokens >= r.Cost,
			InStock:    r.Stock > 0,
		})
	}
	cats := view.GroupCount(d.Rewards, func(r models.Reward) string { return r.Category })
	p := Page{
		Path:  "/rewards",
		Title: "Rewards",
		Data: map[string]any{
			"items":         items,
			"empty":         res.Empty,
			"empty_message": res.EmptyMessage,
			"categories":    labels(cats),
		},
	}
	if acct != nil {
		p.Stats = []Stat{{Key: "balance", Label: "Balance", Value: acct.Tokens}}
	}
	return p
}

func (b *Builder) Settings(acct *models.Account) Page {
	return Page{Path: "/settings", Title: "Settings", Data: map[string]any{"account": acct}}
}

func (b *Builder) AdminLogin() Page {
	return Page{Path: "/admin/login", Title: "Admin sign in", Data: map[string]any{"fields": []string{"username", "password"}}}
}

func (b *Builder) Admin(params Params) Page {
	d := b.catalog.Snapshot()
	users := AccountTable.Render(d.Accounts, view.TableRequest[models.Account]{
		Text:     params.Text,
		Status:   params.Status,
		Filters:  []view.Predicate[models.Account]{view.FieldEquals(func(a models.Account) string { return string(a.Role) }, params.Role)},
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	return Page{
		Path:  "/admin",
		Title: "Admin dashboard",
		Stats: []Stat{
			{Key: "users", Label: "Users", Value: len(d.Accounts)},
			{Key: "pending", Label: "Pending approval", Value: countAccounts(d.Accounts, models.AccountPending)},
			{Key: "open_cases", Label: "Open fraud cases", Value: view.Count(d.FraudCases, openCase)},
			{Key: "open_alerts", Label: "Open alerts", Value: view.Count(d.Alerts, openAlert)},
			{Key: "active_campaigns", Label: "Active campaigns", Value: view.Count(d.Campaigns, func(c models.Campaign) bool { return c.Status == models.CampaignActive })},
		},
		Charts: []view.Series{
			{Name: "Users by role", Kind: "bar", Points: view.GroupCount(d.Accounts, func(a models.Account) string { return string(a.Role) })},
			{Name: "Scan results", Kind: "pie", Points: view.GroupCount(d.Scans, func(s models.ScanLog) string { return string(s.Result) })},
		},
		Tables: map[string]view.TableView{
			"users":       users,
			"fraud_cases": FraudCaseTable.Render(d.FraudCases, view.TableRequest[models.FraudCase]{}),
			"alerts":      AlertTable.Render(d.Alerts, view.TableRequest[models.CounterfeitAlert]{}),
			"campaigns":   CampaignTable.Render(d.Campaigns, view.TableRequest[models.Campaign]{}),
		},
	}
}

// Users renders the admin user table alone.
func (b *Builder) Users(params Params) view.TableView {
	return b.Admin(params).Tables["users"]
}

func (b *Builder) Analytics() Page {
	d := b.catalog.Snapshot()
	perDay := view.GroupCount(d.Scans, func(s models.ScanLog) string { return s.ScannedAt.Format("2006-01-02") })
	sort.SliceStable(perDay, func(i, j int) bool { return perDay[i].Label < perDay[j].Label })
	return Page{
		Path:  "/admin/analytics",
		Title: "Analytics",
		Stats: []Stat{
			{Key: "tokens_issued", Label: "Tokens issued", Value: tokensIssued(d)},
			{Key: "bottles", Label: "Bottles recycled", Value: view.Sum(d.CollectionLogs, func(c models.CollectionLog) int { return c.Bottles })},
			{Key: "budget", Label: "Campaign budget", Value: totalBudget(d.Campaigns).StringFixed(2)},
		},
		Charts: []view.Series{
			{Name: "Scans per day", Kind: "line", Points: perDay},
			{Name: "Tokens distributed", Kind: "bar", Points: view.GroupSum(d.Campaigns,
				func(c models.Campaign) string { return c.Name },
				func(c models.Campaign) float64 { return float64(c.TokensDistributed) })},
			{Name: "Bottles per drop point", Kind: "area", Points: view.GroupSum(d.DropPoints,
				func(p models.DropPoint) string { return p.Name },
				func(p models.DropPoint) float64 { return float64(p.Collected) })},
		},
	}
}

func (b *Builder) Monitor(params Params) Page {
	d := b.catalog.Snapshot()
	scans := ownScans(d.Scans, "")
	counterfeit := view.Count(d.Scans, func(s models.ScanLog) bool { return s.Result == models.ScanCounterfeit })
	return Page{
		Path:  "/admin/monitor",
		Title: "Live monitor",
		Stats: []Stat{
			{Key: "scans", Label: "Scans", Value: len(d.Scans)},
			{Key: "counterfeit_rate", Label: "Counterfeit rate (%)", Value: view.Percent(int64(counterfeit), int64(len(d.Scans))).String()},
			{Key: "open_alerts", Label: "Open alerts", Value: view.Count(d.Alerts, openAlert)},
		},
		Tables: map[string]view.TableView{
			"scans": ScanTable.Render(scans, view.TableRequest[models.ScanLog]{
				Text: params.Text, Status: params.Status, Page: params.Page, PageSize: params.PageSize,
			}),
			"alerts": AlertTable.Render(d.Alerts, view.TableRequest[models.CounterfeitAlert]{Status: string(models.CaseOpen)}),
		},
	}
}

// Company is the brand view: its campaigns and the alerts on its products.
func (b *Builder) Company(brand string, params Params) Page {
	d := b.catalog.Snapshot()
	ofBrand := func(name string) bool { return brand == "" || strings.EqualFold(name, brand) }
	var campaigns []models.Campaign
	for _, c := range d.Campaigns {
		if ofBrand(c.Brand) {
			campaigns = append(campaigns, c)
		}
	}
	var alerts []models.CounterfeitAlert
	for _, a := range d.Alerts {
		if ofBrand(a.Brand) {
			alerts = append(alerts, a)
		}
	}
	alloc := view.Sum(campaigns, func(c models.Campaign) int { return c.TokenAllocation })
	dist := view.Sum(campaigns, func(c models.Campaign) int { return c.TokensDistributed })
	return Page{
		Path:  "/dashboard/company",
		Title: "Company dashboard",
		Stats: []Stat{
			{Key: "budget", Label: "Total budget", Value: totalBudget(campaigns).StringFixed(2)},
			{Key: "distributed", Label: "Tokens distributed (%)", Value: view.Percent(int64(dist), int64(alloc)).String()},
			{Key: "open_alerts", Label: "Open alerts", Value: view.Count(alerts, openAlert)},
		},
		Tables: map[string]view.TableView{
			"campaigns": CampaignTable.Render(campaigns, view.TableRequest[models.Campaign]{
				Text: params.Text, Status: params.Status, Page: params.Page, PageSize: params.PageSize,
			}),
			"alerts": AlertTable.Render(alerts, view.TableRequest[models.CounterfeitAlert]{}),
		},
	}
}

func (b *Builder) Manufacturer(params Params) Page {
	d := b.catalog.Snapshot()
	units := view.Sum(d.Batches, func(x models.ProductBatch) int { return x.Units })
	verified := view.Sum(d.Batches, func(x models.ProductBatch) int { return x.VerifiedUnits })
	flagged := view.Sum(d.Batches, func(x models.ProductBatch) int { return x.FlaggedUnits })
	return Page{
		Path:  "/dashboard/manufacturer",
		Title: "Manufacturer dashboard",
		Stats: []Stat{
			{Key: "batches", Label: "Batches", Value: len(d.Batches)},
			{Key: "units", Label: "Units", Value: units},
			{Key: "verified", Label: "Verified (%)", Value: view.Percent(int64(verified), int64(units)).String()},
			{Key: "flagged", Label: "Flagged (%)", Value: view.Percent(int64(flagged), int64(units)).String()},
		},
		Charts: []view.Series{
			{Name: "Batches by status", Kind: "pie", Points: view.GroupCount(d.Batches, func(x models.ProductBatch) string { return string(x.Status) })},
		},
		Tables: map[string]view.TableView{
			"batches": BatchTable.Render(d.Batches, view.TableRequest[models.ProductBatch]{
				Text: params.Text, Status: params.Status, Page: params.Page, PageSize: params.PageSize,
			}),
		},
	}
}

func (b *Builder) Recycler(params Params) Page {
	d := b.catalog.Snapshot()
	weight := decimal.Zero
	for _, c := range d.CollectionLogs {
		weight = weight.Add(c.WeightKg)
	}
	capacity := view.Sum(d.DropPoints, func(p models.DropPoint) int { return p.Capacity })
	collected := view.Sum(d.DropPoints, func(p models.DropPoint) int { return p.Collected })
	logs := make([]models.CollectionLog, 0, len(d.CollectionLogs))
	for i := len(d.CollectionLogs) - 1; i >= 0; i-- {
		logs = append(logs, d.CollectionLogs[i])
	}
	return Page{
		Path:  "/dashboard/recycler",
		Title: "Recycler dashboard",
		Stats: []Stat{
			{Key: "bottles", Label: "Bottles collected", Value: view.Sum(d.CollectionLogs, func(c models.CollectionLog) int { return c.Bottles })},
			{Key: "weight_kg", Label: "Weight (kg)", Value: weight.StringFixed(2)},
			{Key: "utilisation", Label: "Network fill (%)", Value: view.Percent(int64(collected), int64(capacity)).String()},
		},
		Tables: map[string]view.TableView{
			"drop_points": DropPointTable.Render(d.DropPoints, view.TableRequest[models.DropPoint]{
				Text: params.Text, Status: params.Status, Page: params.Page, PageSize: params.PageSize,
			}),
			"collections": CollectionTable.Render(logs, view.TableRequest[models.CollectionLog]{}),
		},
	}
}

func (b *Builder) Regulator(params Params) Page {
	d := b.catalog.Snapshot()
	closed := view.Count(d.FraudCases, func(f models.FraudCase) bool {
		return f.Status == models.CaseResolved || f.Status == models.CaseDismissed
	})
	counterfeit := view.Count(d.Scans, func(s models.ScanLog) bool { return s.Result == models.ScanCounterfeit })
	return Page{
		Path:  "/dashboard/regulator",
		Title: "Regulatory panel",
		Stats: []Stat{
			{Key: "cases", Label: "Fraud cases", Value: len(d.FraudCases)},
			{Key: "closure_rate", Label: "Closure rate (%)", Value: view.Percent(int64(closed), int64(len(d.FraudCases))).String()},
			{Key: "counterfeit_rate", Label: "Counterfeit rate (%)", Value: view.Percent(int64(counterfeit), int64(len(d.Scans))).String()},
		},
		Charts: []view.Series{
			{Name: "Cases by severity", Kind: "bar", Points: view.GroupCount(d.FraudCases, func(f models.FraudCase) string { return string(f.Severity) })},
		},
		Tables: map[string]view.TableView{
			"fraud_cases": FraudCaseTable.Render(d.FraudCases, view.TableRequest[models.FraudCase]{
				Text: params.Text, Status: params.Status, Page: params.Page, PageSize: params.PageSize,
			}),
			"alerts": AlertTable.Render(d.Alerts, view.TableRequest[models.CounterfeitAlert]{}),
		},
	}
}

func (b *Builder) Public() Page {
	d := b.catalog.Snapshot()
	return Page{
		Path:  "/dashboard/public",
		Title: "Impact",
		Stats: platformStats(d),
		Charts: []view.Series{
			{Name: "Bottles per drop point", Kind: "bar", Points: view.GroupSum(d.DropPoints,
				func(p models.DropPoint) string { return p.Name },
				func(p models.DropPoint) float64 { return float64(p.Collected) })},
		},
	}
}

func platformStats(d catalog.Data) []Stat {
	return []Stat{
		{Key: "scans", Label: "Products scanned", Value: len(d.Scans)},
		{Key: "counterfeits", Label: "Counterfeits detected", Value: view.Count(d.Scans, func(s models.ScanLog) bool { return s.Result == models.ScanCounterfeit })},
		{Key: "bottles", Label: "Bottles recycled", Value: view.Sum(d.DropPoints, func(p models.DropPoint) int { return p.Collected })},
		{Key: "drop_points", Label: "Drop points", Value: len(d.DropPoints)},
	}
}

// ownScans returns scans newest first; an empty account id keeps all.
func ownScans(scans []models.ScanLog, accountID string) []models.ScanLog {
	out := make([]models.ScanLog, 0, len(scans))
	for i := len(scans) - 1; i >= 0; i-- {
		if accountID == "" || scans[i].AccountID == accountID {
			out = append(out, scans[i])
		}
	}
	return out
}

func tokensIssued(d catalog.Data) int {
	return view.Sum(d.Scans, func(s models.ScanLog) int { return s.Points }) +
		view.Sum(d.CollectionLogs, func(c models.CollectionLog) int { return c.Tokens })
}

func totalBudget(cs []models.Campaign) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs {
		total = total.Add(c.Budget)
	}
	return total
}

func countAccounts(as []models.Account, st models.AccountStatus) int {
	return view.Count(as, func(a models.Account) bool { return a.Status == st })
}

func openCase(f models.FraudCase) bool {
	return f.Status == models.CaseOpen || f.Status == models.CaseInvestigating
}

func openAlert(a models.CounterfeitAlert) bool {
	return a.Status == models.CaseOpen || a.Status == models.CaseInvestigating
}

func categories(points []models.DropPoint) []string {
	out := []string{"all", view.CategoryNearby}
	seen := map[string]bool{}
	for _, p := range points {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func labels(points []view.Point) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Label)
	}
	return out
}
