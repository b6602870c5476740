package audit_service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/schollz/progressbar/v3"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/database"
	"github.com/varity-labs/varity-app-store/models"
	"github.com/varity-labs/varity-app-store/models/dao"
	"github.com/varity-labs/varity-app-store/service/apperrors"
)

var log = common.NewLog("audit")

// Report result of one revenue audit
type Report struct {
	Purchases      int                  `json:"purchases"`
	BillingEntries int                  `json:"billing_entries"`
	Expected       models.RevenueTotals `json:"expected"` // recomputed from settled records
	Recorded       models.RevenueTotals `json:"recorded"` // running totals
	Match          bool                 `json:"match"`
	CheckedAt      int64                `json:"checked_at"`
}

// AuditService recomputes the revenue totals from every purchase and billing record and
// compares them with the running totals, which must always agree.
type AuditService struct {
	db     database.Database
	ledger *dao.LedgerDAO
	lock   sync.Locker

	scheduler *gocron.Scheduler
	interval  time.Duration

	mu   sync.RWMutex
	last *Report
}

// NewAuditService lock is held during a run so settlement cannot interleave
func NewAuditService(db database.Database, lock sync.Locker, interval time.Duration) *AuditService {
	return &AuditService{
		db:        db,
		ledger:    dao.NewLedgerDAO(db),
		lock:      lock,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

// Run audits once. progress, when not nil, receives a progress bar.
func (s *AuditService) Run(ctx context.Context, progress io.Writer) (*Report, error) {
	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions64(
			-1,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Auditing ledger"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()
	}
	tick := func() {
		if bar != nil {
			bar.Add(1)
		}
	}

	if s.lock != nil {
		s.lock.Lock()
		defer s.lock.Unlock()
	}

	report := &Report{}
	var err error

	err = s.ledger.ScanPurchases(func(p *models.Purchase) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if p.PlatformFee+p.DeveloperShare != p.Price {
			log.Warn("purchase split does not sum to price", "appId", p.AppID, "buyer", p.Buyer)
		}
		report.Purchases++
		if report.Expected.PlatformRevenue, err = add(report.Expected.PlatformRevenue, p.PlatformFee); err != nil {
			return false, err
		}
		if report.Expected.DeveloperPayouts, err = add(report.Expected.DeveloperPayouts, p.DeveloperShare); err != nil {
			return false, err
		}
		tick()
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan purchases: %w", err)
	}

	err = s.ledger.ScanBilling(func(bp *models.BillingPayment) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		report.BillingEntries++
		if report.Expected.PlatformRevenue, err = add(report.Expected.PlatformRevenue, bp.Amount); err != nil {
			return false, err
		}
		tick()
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan billing: %w", err)
	}

	if report.Recorded, err = s.ledger.Totals(s.db); err != nil {
		return nil, err
	}
	report.Match = report.Recorded == report.Expected
	report.CheckedAt = time.Now().Unix()

	common.MetricAuditMismatch(!report.Match)
	if report.Match {
		log.Info("revenue audit passed", "purchases", report.Purchases, "billing", report.BillingEntries,
			"platformRevenue", report.Recorded.PlatformRevenue, "developerPayouts", report.Recorded.DeveloperPayouts)
	} else {
		log.Error("revenue audit mismatch", "expected", report.Expected, "recorded", report.Recorded)
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, nil
}

func add(a, b uint64) (uint64, error) {
	if a+b < a {
		return 0, apperrors.ErrOverflow
	}
	return a + b, nil
}

// Last most recent report, nil before the first run
func (s *AuditService) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Start schedules periodic audits
func (s *AuditService) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		if _, err := s.Run(context.Background(), nil); err != nil {
			log.Error("revenue audit failed", "err", err)
		}
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	log.Info("revenue audit scheduled", "interval", s.interval)
	return nil
}

// Stop stops the scheduler
func (s *AuditService) Stop() {
	s.scheduler.Stop()
}
