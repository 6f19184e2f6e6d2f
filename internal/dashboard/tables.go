package dashboard

import (
	"pingplatform/internal/models"
	"pingplatform/internal/view"
)

var caseBadges = map[string]view.Tone{
	string(models.CaseOpen):          view.ToneDanger,
	string(models.CaseInvestigating): view.ToneWarning,
	string(models.CaseResolved):      view.ToneSuccess,
	string(models.CaseDismissed):     view.ToneNeutral,
}

var AccountTable = view.Table[models.Account]{
	Columns: []view.Column[models.Account]{
		{Key: "id", Title: "ID", Value: func(a models.Account) any { return a.ID }},
		{Key: "name", Title: "Name", Value: func(a models.Account) any { return a.Name }},
		{Key: "email", Title: "Email", Value: func(a models.Account) any { return a.Email }},
		{Key: "role", Title: "Role", Value: func(a models.Account) any { return a.Role }},
		{Key: "tokens", Title: "Tokens", Value: func(a models.Account) any { return a.Tokens }},
		{Key: "activity_score", Title: "Activity", Value: func(a models.Account) any { return a.ActivityScore }},
		{Key: "joined_at", Title: "Joined", Value: func(a models.Account) any { return a.JoinedAt }},
	},
	Search: func(a models.Account) []string { return []string{a.Name, a.Email, a.ID} },
	Status: func(a models.Account) string { return string(a.Status) },
	Badges: map[string]view.Tone{
		string(models.AccountActive):    view.ToneSuccess,
		string(models.AccountPending):   view.ToneWarning,
		string(models.AccountSuspended): view.ToneDanger,
		string(models.AccountRejected):  view.ToneNeutral,
	},
	EmptyMessage: "No users match your filters.",
}

var FraudCaseTable = view.Table[models.FraudCase]{
	Columns: []view.Column[models.FraudCase]{
		{Key: "id", Title: "Case", Value: func(f models.FraudCase) any { return f.ID }},
		{Key: "title", Title: "Title", Value: func(f models.FraudCase) any { return f.Title }},
		{Key: "account_id", Title: "Account", Value: func(f models.FraudCase) any { return f.AccountID }},
		{Key: "severity", Title: "Severity", Value: func(f models.FraudCase) any { return f.Severity }},
		{Key: "evidence", Title: "Evidence", Value: func(f models.FraudCase) any { return len(f.Evidence) }},
		{Key: "reported_at", Title: "Reported", Value: func(f models.FraudCase) any { return f.ReportedAt }},
	},
	Search:       func(f models.FraudCase) []string { return []string{f.Title, f.AccountID, f.ID} },
	Status:       func(f models.FraudCase) string { return string(f.Status) },
	Badges:       caseBadges,
	EmptyMessage: "No fraud cases.",
}

var AlertTable = view.Table[models.CounterfeitAlert]{
	Columns: []view.Column[models.CounterfeitAlert]{
		{Key: "id", Title: "Alert", Value: func(a models.CounterfeitAlert) any { return a.ID }},
		{Key: "product", Title: "Product", Value: func(a models.CounterfeitAlert) any { return a.Product }},
		{Key: "brand", Title: "Brand", Value: func(a models.CounterfeitAlert) any { return a.Brand }},
		{Key: "location", Title: "Location", Value: func(a models.CounterfeitAlert) any { return a.Location }},
		{Key: "severity", Title: "Severity", Value: func(a models.CounterfeitAlert) any { return a.Severity }},
		{Key: "reported_at", Title: "Reported", Value: func(a models.CounterfeitAlert) any { return a.ReportedAt }},
	},
	Search:       func(a models.CounterfeitAlert) []string { return []string{a.Product, a.Brand, a.Location} },
	Status:       func(a models.CounterfeitAlert) string { return string(a.Status) },
	Badges:       caseBadges,
	EmptyMessage: "No counterfeit alerts.",
}

var CampaignTable = view.Table[models.Campaign]{
	Columns: []view.Column[models.Campaign]{
		{Key: "id", Title: "ID", Value: func(c models.Campaign) any { return c.ID }},
		{Key: "name", Title: "Campaign", Value: func(c models.Campaign) any { return c.Name }},
		{Key: "brand", Title: "Brand", Value: func(c models.Campaign) any { return c.Brand }},
		{Key: "budget", Title: "Budget", Value: func(c models.Campaign) any { return c.Budget.StringFixed(2) }},
		{Key: "distributed", Title: "Distributed", Value: func(c models.Campaign) any {
			return view.Percent(int64(c.TokensDistributed), int64(c.TokenAllocation)).String() + "%"
		}},
		{Key: "starts_at", Title: "Starts", Value: func(c models.Campaign) any { return c.StartsAt }},
		{Key: "ends_at", Title: "Ends", Value: func(c models.Campaign) any { return c.EndsAt }},
	},
	Search: func(c models.Campaign) []string { return []string{c.Name, c.Brand} },
	Status: func(c models.Campaign) string { return string(c.Status) },
	Badges: map[string]view.Tone{
		string(models.CampaignDraft):     view.ToneNeutral,
		string(models.CampaignActive):    view.ToneSuccess,
		string(models.CampaignPaused):    view.ToneWarning,
		string(models.CampaignCompleted): view.ToneInfo,
	},
	EmptyMessage: "No campaigns.",
}

var ScanTable = view.Table[models.ScanLog]{
	Columns: []view.Column[models.ScanLog]{
		{Key: "product", Title: "Product", Value: func(s models.ScanLog) any { return s.ProductName }},
		{Key: "code", Title: "Code", Value: func(s models.ScanLog) any { return s.ProductCode }},
		{Key: "account_id", Title: "Account", Value: func(s models.ScanLog) any { return s.AccountID }},
		{Key: "points", Title: "Points", Value: func(s models.ScanLog) any { return s.Points }},
		{Key: "location", Title: "Location", Value: func(s models.ScanLog) any { return s.Location }},
		{Key: "scanned_at", Title: "Scanned", Value: func(s models.ScanLog) any { return s.ScannedAt }},
	},
	Search: func(s models.ScanLog) []string { return []string{s.ProductName, s.ProductCode, s.Location} },
	Status: func(s models.ScanLog) string { return string(s.Result) },
	Badges: map[string]view.Tone{
		string(models.ScanAuthentic):   view.ToneSuccess,
		string(models.ScanCounterfeit): view.ToneDanger,
		string(models.ScanUnknown):     view.ToneWarning,
	},
	EmptyMessage: "No scans yet.",
}

var CollectionTable = view.Table[models.CollectionLog]{
	Columns: []view.Column[models.CollectionLog]{
		{Key: "drop_point_id", Title: "Drop point", Value: func(c models.CollectionLog) any { return c.DropPointID }},
		{Key: "account_id", Title: "Collector", Value: func(c models.CollectionLog) any { return c.AccountID }},
		{Key: "bottles", Title: "Bottles", Value: func(c models.CollectionLog) any { return c.Bottles }},
		{Key: "weight_kg", Title: "Weight (kg)", Value: func(c models.CollectionLog) any { return c.WeightKg.StringFixed(2) }},
		{Key: "tokens", Title: "Tokens", Value: func(c models.CollectionLog) any { return c.Tokens }},
		{Key: "collected_at", Title: "Collected", Value: func(c models.CollectionLog) any { return c.CollectedAt }},
	},
	Search:       func(c models.CollectionLog) []string { return []string{c.DropPointID, c.AccountID} },
	EmptyMessage: "No collections recorded.",
}

var BatchTable = view.Table[models.ProductBatch]{
	Columns: []view.Column[models.ProductBatch]{
		{Key: "id", Title: "Batch", Value: func(b models.ProductBatch) any { return b.ID }},
		{Key: "product", Title: "Product", Value: func(b models.ProductBatch) any { return b.Product }},
		{Key: "manufacturer", Title: "Manufacturer", Value: func(b models.ProductBatch) any { return b.Manufacturer }},
		{Key: "units", Title: "Units", Value: func(b models.ProductBatch) any { return b.Units }},
		{Key: "verified", Title: "Verified", Value: func(b models.ProductBatch) any {
			return view.Percent(int64(b.VerifiedUnits), int64(b.Units)).String() + "%"
		}},
		{Key: "flagged_units", Title: "Flagged", Value: func(b models.ProductBatch) any { return b.FlaggedUnits }},
	},
	Search: func(b models.ProductBatch) []string { return []string{b.ID, b.Product, b.Manufacturer} },
	Status: func(b models.ProductBatch) string { return string(b.Status) },
	Badges: map[string]view.Tone{
		string(models.BatchInProduction): view.ToneNeutral,
		string(models.BatchShipped):      view.ToneInfo,
		string(models.BatchVerified):     view.ToneSuccess,
		string(models.BatchRecalled):     view.ToneDanger,
	},
	EmptyMessage: "No product batches.",
}

var DropPointTable = view.Table[models.DropPoint]{
	Columns: []view.Column[models.DropPoint]{
		{Key: "name", Title: "Drop point", Value: func(p models.DropPoint) any { return p.Name }},
		{Key: "address", Title: "Address", Value: func(p models.DropPoint) any { return p.Address }},
		{Key: "collected", Title: "Collected", Value: func(p models.DropPoint) any { return p.Collected }},
		{Key: "capacity", Title: "Capacity", Value: func(p models.DropPoint) any { return p.Capacity }},
		{Key: "fill", Title: "Fill", Value: func(p models.DropPoint) any {
			return view.Percent(int64(p.Collected), int64(p.Capacity)).String() + "%"
		}},
	},
	Search:       func(p models.DropPoint) []string { return []string{p.Name, p.Address, p.Description} },
	Status:       fillStatus,
	Badges:       map[string]view.Tone{"ok": view.ToneSuccess, "filling": view.ToneWarning, "full": view.ToneDanger},
	EmptyMessage: "No drop points match your search.",
}

var ClaimTable = view.Table[models.ClaimedReward]{
	Columns: []view.Column[models.ClaimedReward]{
		{Key: "id", Title: "Claim", Value: func(c models.ClaimedReward) any { return c.ID }},
		{Key: "name", Title: "Reward", Value: func(c models.ClaimedReward) any { return c.Name }},
		{Key: "cost", Title: "Cost", Value: func(c models.ClaimedReward) any { return c.Cost }},
		{Key: "claimed_at", Title: "Claimed", Value: func(c models.ClaimedReward) any { return c.ClaimedAt }},
	},
	Search: func(c models.ClaimedReward) []string { return []string{c.Name} },
	Status: func(c models.ClaimedReward) string { return string(c.Status) },
	Badges: map[string]view.Tone{
		string(models.ClaimProcessing): view.ToneInfo,
		string(models.ClaimReady):      view.ToneSuccess,
		string(models.ClaimDelivered):  view.ToneNeutral,
		string(models.ClaimExpired):    view.ToneDanger,
	},
	EmptyMessage: "You have not claimed any rewards yet.",
}

// fillStatus buckets a drop point by how full it is.
func fillStatus(p models.DropPoint) string {
	if p.Capacity <= 0 {
		return "ok"
	}
	switch pct := p.Collected * 100 / p.Capacity; {
	case pct >= 95:
		return "full"
	case pct >= 75:
		return "filling"
	default:
		return "ok"
	}
}
