package simulate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"pingplatform/internal/catalog"
	"pingplatform/internal/models"
)

type ScanState string

const (
	ScanIdle        ScanState = "idle"
	ScanScanning    ScanState = "scanning"
	ScanAuthentic   ScanState = ScanState(models.ScanAuthentic)
	ScanCounterfeit ScanState = ScanState(models.ScanCounterfeit)
	ScanUnknown     ScanState = ScanState(models.ScanUnknown)
)

type ScanStatus struct {
	State  ScanState       `json:"state"`
	Result *models.ScanLog `json:"result,omitempty"`
}

type ScanRequest struct {
	AccountID   string
	DeviceID    string
	ProductCode string
	IP          string
	Location    string
}

func (e *Engine) CurrentScan(deviceID string) ScanStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.scans[deviceID]
	if !ok {
		return ScanStatus{State: ScanIdle}
	}
	return st
}

// ResetScan returns a finished scan to idle.
func (e *Engine) ResetScan(deviceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scans[deviceID].State == ScanScanning {
		return ErrScanInProgress
	}
	delete(e.scans, deviceID)
	return nil
}

// Scan moves the device from idle (or a previous result) to scanning and,
// after the scan delay, to exactly one result state.
func (e *Engine) Scan(ctx context.Context, req ScanRequest) (models.ScanLog, error) {
	if _, err := e.catalog.Account(req.AccountID); err != nil {
		return models.ScanLog{}, fmt.Errorf("scan account %s: %w", req.AccountID, err)
	}
	e.mu.Lock()
	if e.scans[req.DeviceID].State == ScanScanning {
		e.mu.Unlock()
		return models.ScanLog{}, ErrScanInProgress
	}
	e.scans[req.DeviceID] = ScanStatus{State: ScanScanning}
	e.mu.Unlock()

	return afterDelay(ctx, e, e.opts.Delays.Scan, func() (models.ScanLog, error) {
		return e.completeScan(req)
	})
}

func (e *Engine) completeScan(req ScanRequest) (models.ScanLog, error) {
	result := e.outcomes.ScanResult()
	points := e.opts.Profile.Points(result, e.outcomes)
	now := e.clock.Now()

	var (
		entry models.ScanLog
		alert *models.CounterfeitAlert
	)
	err := e.catalog.Update(func(d *catalog.Data) error {
		ai := d.AccountIndex(req.AccountID)
		if ai < 0 {
			return catalog.ErrNotFound
		}
		product, brand := lookupProduct(d, req.ProductCode)
		entry = models.ScanLog{
			ID:          uuid.NewString(),
			AccountID:   req.AccountID,
			ProductName: product,
			ProductCode: req.ProductCode,
			Result:      result,
			Points:      points,
			Device:      req.DeviceID,
			IP:          req.IP,
			Location:    req.Location,
			ScannedAt:   now,
		}
		d.Accounts[ai].Tokens += points
		d.Scans = append(d.Scans, entry)
		if result == models.ScanCounterfeit {
			alert = &models.CounterfeitAlert{
				ID:         uuid.NewString(),
				Product:    product,
				Brand:      brand,
				Location:   req.Location,
				Severity:   models.SeverityHigh,
				Status:     models.CaseOpen,
				ScanID:     entry.ID,
				ReportedAt: now,
			}
			d.Alerts = append(d.Alerts, *alert)
		}
		return nil
	})

	e.mu.Lock()
	if err != nil {
		delete(e.scans, req.DeviceID)
	} else {
		e.scans[req.DeviceID] = ScanStatus{State: ScanState(result), Result: &entry}
	}
	e.mu.Unlock()
	if err != nil {
		log.Printf("scan failed device=%s account=%s err=%v", req.DeviceID, req.AccountID, err)
		e.feed.Push(req.DeviceID, models.LevelError, "Scan failed", "The product could not be verified.")
		return models.ScanLog{}, err
	}

	log.Printf("scan completed device=%s account=%s code=%s result=%s points=%d",
		req.DeviceID, req.AccountID, req.ProductCode, result, points)
	switch result {
	case models.ScanAuthentic:
		e.feed.Push(req.DeviceID, models.LevelSuccess, "Authentic product",
			fmt.Sprintf("%s is genuine. You earned %d tokens.", entry.ProductName, points))
	case models.ScanCounterfeit:
		e.feed.Push(req.DeviceID, models.LevelWarning, "Counterfeit detected",
			fmt.Sprintf("%s could not be verified and was reported. You earned %d tokens.", entry.ProductName, points))
		e.dispatchAlert(*alert)
	default:
		e.feed.Push(req.DeviceID, models.LevelInfo, "Unknown product",
			fmt.Sprintf("This code is not registered. You earned %d tokens.", points))
	}
	return entry, nil
}

// lookupProduct resolves a scanned code against the product batches.
func lookupProduct(d *catalog.Data, code string) (product, brand string) {
	code = strings.TrimSpace(code)
	for _, b := range d.Batches {
		if strings.EqualFold(b.ID, code) {
			return b.Product, b.Manufacturer
		}
	}
	if code == "" {
		return "Unlabelled product", ""
	}
	return "Product " + code, ""
}
