package usecase

import (
	"context"
	"log"
	"time"

	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/repository"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/metrics"
)

// DefaultReportThreshold is the number of distinct reports that removes a
// listing.
const DefaultReportThreshold = 2

var reportReasons = map[string]bool{
	"illegal":       true,
	"inappropriate": true,
	"scam":          true,
	"spam":          true,
	"misleading":    true,
	"other":         true,
}

func IsValidReportReason(reason string) bool {
	return reportReasons[reason]
}

type ReportUseCase struct {
	transactor  repository.Transactor
	itemRepo    repository.ItemRepository
	rateLimiter Limiter
	threshold   int
	now         func() time.Time
}

func NewReportUseCase(transactor repository.Transactor, itemRepo repository.ItemRepository, rateLimiter Limiter, threshold int) *ReportUseCase {
	if threshold < 1 {
		threshold = DefaultReportThreshold
	}
	return &ReportUseCase{
		transactor:  transactor,
		itemRepo:    itemRepo,
		rateLimiter: rateLimiter,
		threshold:   threshold,
		now:         time.Now,
	}
}

type ReportResult struct {
	ItemID      string `json:"item_id"`
	ReportCount int    `json:"report_count"`
	Removed     bool   `json:"removed"`
}

// SubmitReport records reporterID's report on itemID. When the number of
// reports reaches the threshold the listing is deleted in the same
// transaction.
func (uc *ReportUseCase) SubmitReport(ctx context.Context, itemID, reporterID, reason string) (*ReportResult, error) {
	if !IsValidReportReason(reason) {
		return nil, validation("Invalid report reason")
	}

	if allowed, wait := uc.rateLimiter.Allow(reporterID, ratelimit.ActionSubmitReport); !allowed {
		log.Printf("SubmitReport Rate Limited: User %s must wait %v", reporterID, wait)
		return nil, rateLimited(wait)
	}

	var result *ReportResult
	err := uc.transactor.RunInTransaction(ctx, func(tx repository.Tx) error {
		item, err := tx.GetItem(itemID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return itemNotFound(err)
			}
			return err
		}
		if item.IsOwnedBy(reporterID) {
			return cannotReportOwnItem()
		}
		if item.HasReportFrom(reporterID) {
			return alreadyReported()
		}

		reports := append(append([]entity.Report(nil), item.Reports...), entity.Report{
			ReporterID: reporterID,
			Reason:     reason,
			ReportedAt: uc.now(),
		})

		result = &ReportResult{ItemID: itemID, ReportCount: len(reports)}
		if len(reports) >= uc.threshold {
			result.Removed = true
			return tx.DeleteItem(itemID)
		}
		return tx.SetItemReports(itemID, reports)
	})
	if err != nil {
		code := errors.Code(err)
		if code == "" {
			code = errors.CodeInternal
		}
		metrics.Reports.WithLabelValues(code).Inc()
		log.Printf("SubmitReport Error: item=%s reporter=%s: %v", itemID, reporterID, err)
		return nil, err
	}

	if result.Removed {
		metrics.Reports.WithLabelValues("removed").Inc()
		log.Printf("SubmitReport: item %s removed after %d reports", itemID, result.ReportCount)
	} else {
		metrics.Reports.WithLabelValues("recorded").Inc()
	}
	return result, nil
}

// ListReportedItems returns ownerID's listings that carry at least one
// report.
func (uc *ReportUseCase) ListReportedItems(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	items, err := uc.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	reported := make([]*entity.Item, 0)
	for _, item := range items {
		if len(item.Reports) > 0 {
			reported = append(reported, item)
		}
	}
	return reported, nil
}
