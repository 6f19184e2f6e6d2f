package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleConsumer     Role = "consumer"
	RoleBrand        Role = "brand"
	RoleManufacturer Role = "manufacturer"
	RoleRecycler     Role = "recycler"
	RoleRegulator    Role = "regulator"
	RoleAdmin        Role = "admin"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountPending   AccountStatus = "pending"
	AccountSuspended AccountStatus = "suspended"
	AccountRejected  AccountStatus = "rejected"
)

type Account struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Email         string        `json:"email" yaml:"email"`
	Role          Role          `json:"role" yaml:"role"`
	Status        AccountStatus `json:"status" yaml:"status"`
	Tokens        int           `json:"tokens" yaml:"tokens"`
	ActivityScore int           `json:"activity_score" yaml:"activity_score"`
	Location      string        `json:"location,omitempty" yaml:"location"`
	JoinedAt      time.Time     `json:"joined_at" yaml:"joined_at"`
}

type ScanResult string

const (
	ScanAuthentic   ScanResult = "authentic"
	ScanCounterfeit ScanResult = "counterfeit"
	ScanUnknown     ScanResult = "unknown"
)

type ScanLog struct {
	ID          string     `json:"id" yaml:"id"`
	AccountID   string     `json:"account_id" yaml:"account_id"`
	ProductName string     `json:"product_name" yaml:"product_name"`
	ProductCode string     `json:"product_code" yaml:"product_code"`
	Result      ScanResult `json:"result" yaml:"result"`
	Points      int        `json:"points" yaml:"points"`
	Device      string     `json:"device,omitempty" yaml:"device"`
	IP          string     `json:"ip,omitempty" yaml:"ip"`
	Location    string     `json:"location,omitempty" yaml:"location"`
	ScannedAt   time.Time  `json:"scanned_at" yaml:"scanned_at"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type CaseStatus string

const (
	CaseOpen          CaseStatus = "open"
	CaseInvestigating CaseStatus = "investigating"
	CaseResolved      CaseStatus = "resolved"
	CaseDismissed     CaseStatus = "dismissed"
)

type FraudCase struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	AccountID  string     `json:"account_id" yaml:"account_id"`
	Severity   Severity   `json:"severity" yaml:"severity"`
	Status     CaseStatus `json:"status" yaml:"status"`
	Evidence   []string   `json:"evidence" yaml:"evidence"`
	ReportedAt time.Time  `json:"reported_at" yaml:"reported_at"`
}

type CounterfeitAlert struct {
	ID         string     `json:"id" yaml:"id"`
	Product    string     `json:"product" yaml:"product"`
	Brand      string     `json:"brand" yaml:"brand"`
	Location   string     `json:"location" yaml:"location"`
	Severity   Severity   `json:"severity" yaml:"severity"`
	Status     CaseStatus `json:"status" yaml:"status"`
	ScanID     string     `json:"scan_id,omitempty" yaml:"scan_id"`
	ReportedAt time.Time  `json:"reported_at" yaml:"reported_at"`
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID                string          `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Brand             string          `json:"brand" yaml:"brand"`
	Budget            decimal.Decimal `json:"budget" yaml:"budget"`
	TokenAllocation   int             `json:"token_allocation" yaml:"token_allocation"`
	TokensDistributed int             `json:"tokens_distributed" yaml:"tokens_distributed"`
	Status            CampaignStatus  `json:"status" yaml:"status"`
	StartsAt          time.Time       `json:"starts_at" yaml:"starts_at"`
	EndsAt            time.Time       `json:"ends_at" yaml:"ends_at"`
}

type DropPoint struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Address     string   `json:"address" yaml:"address"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Latitude    float64  `json:"latitude" yaml:"latitude"`
	Longitude   float64  `json:"longitude" yaml:"longitude"`
	Capacity    int      `json:"capacity" yaml:"capacity"`
	Collected   int      `json:"collected" yaml:"collected"`
	Materials   []string `json:"materials" yaml:"materials"`
	// Distance is filled per request when a position is known.
	Distance *float64 `json:"distance_km,omitempty" yaml:"-"`
}

type CollectionLog struct {
	ID          string          `json:"id" yaml:"id"`
	DropPointID string          `json:"drop_point_id" yaml:"drop_point_id"`
	AccountID   string          `json:"account_id" yaml:"account_id"`
	Bottles     int             `json:"bottles" yaml:"bottles"`
	WeightKg    decimal.Decimal `json:"weight_kg" yaml:"weight_kg"`
	Tokens      int             `json:"tokens" yaml:"tokens"`
	CollectedAt time.Time       `json:"collected_at" yaml:"collected_at"`
}

type Reward struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Cost        int    `json:"cost" yaml:"cost"`
	Stock       int    `json:"stock" yaml:"stock"`
}

type ClaimStatus string

const (
	ClaimProcessing ClaimStatus = "processing"
	ClaimReady      ClaimStatus = "ready"
	ClaimDelivered  ClaimStatus = "delivered"
	ClaimExpired    ClaimStatus = "expired"
)

type ClaimedReward struct {
	ID        string      `json:"id" yaml:"id"`
	RewardID  string      `json:"reward_id" yaml:"reward_id"`
	AccountID string      `json:"account_id" yaml:"account_id"`
	Name      string      `json:"name" yaml:"name"`
	Cost      int         `json:"cost" yaml:"cost"`
	Status    ClaimStatus `json:"status" yaml:"status"`
	ClaimedAt time.Time   `json:"claimed_at" yaml:"claimed_at"`
}

type BatchStatus string

const (
	BatchInProduction BatchStatus = "in_production"
	BatchShipped      BatchStatus = "shipped"
	BatchVerified     BatchStatus = "verified"
	BatchRecalled     BatchStatus = "recalled"
)

type ProductBatch struct {
	ID            string      `json:"id" yaml:"id"`
	Manufacturer  string      `json:"manufacturer" yaml:"manufacturer"`
	Product       string      `json:"product" yaml:"product"`
	Units         int         `json:"units" yaml:"units"`
	VerifiedUnits int         `json:"verified_units" yaml:"verified_units"`
	FlaggedUnits  int         `json:"flagged_units" yaml:"flagged_units"`
	Status        BatchStatus `json:"status" yaml:"status"`
	ProducedAt    time.Time   `json:"produced_at" yaml:"produced_at"`
}

type SessionKind string

const (
	KindUser  SessionKind = "user"
	KindAdmin SessionKind = "admin"
)

type Credential struct {
	Username  string      `yaml:"username"`
	Password  string      `yaml:"password"`
	Kind      SessionKind `yaml:"kind"`
	AccountID string      `yaml:"account_id"`
}

type Feedback struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
)

type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

type AuditEntry struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actor_id"`
	Action       string    `json:"action"`
	Target       string    `json:"target"`
	MetadataJSON string    `json:"metadata_json"`
	CreatedAt    time.Time `json:"created_at"`
}
