package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/productivityhub/backend/internal/dedup"
	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/repos"
	"github.com/productivityhub/backend/internal/types"
)

// MergeService executes approved duplicate clusters. Each cluster is
// one atomic transaction: a failure merging cluster N never rolls
// back clusters that already committed, and never blocks the ones
// still queued behind it.
type MergeService interface {
	MergeClusters(ctx context.Context, tenantID uuid.UUID, selections []types.ClusterSelection, dryRun bool, userID uuid.UUID, userName string) (*types.MergeContactsResponse, error)
}

type mergeService struct {
	db          *gorm.DB
	log         *logger.Logger
	contactRepo repos.ContactRepo
	historyRepo repos.ContactHistoryRepo
}

func NewMergeService(db *gorm.DB, log *logger.Logger, contactRepo repos.ContactRepo, historyRepo repos.ContactHistoryRepo) MergeService {
	serviceLog := log.With("service", "MergeService")
	return &mergeService{
		db:          db,
		log:         serviceLog,
		contactRepo: contactRepo,
		historyRepo: historyRepo,
	}
}

func (ms *mergeService) MergeClusters(ctx context.Context, tenantID uuid.UUID, selections []types.ClusterSelection, dryRun bool, userID uuid.UUID, userName string) (*types.MergeContactsResponse, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: no clusters selected", apperrors.ErrInvalidArgument)
	}
	// A contact in two selections would merge twice in a real run and
	// double-count in a dry run, so cross-cluster overlap is rejected
	// up front. Malformed single selections still fail per cluster.
	seen := make(map[uuid.UUID]string)
	for _, sel := range selections {
		local := map[uuid.UUID]struct{}{sel.PrimaryID: {}}
		for _, id := range sel.DuplicateIDs {
			local[id] = struct{}{}
		}
		for id := range local {
			if other, ok := seen[id]; ok {
				return nil, fmt.Errorf("%w: contact %s appears in clusters %s and %s",
					apperrors.ErrInvalidArgument, id, other, sel.ClusterID)
			}
			seen[id] = sel.ClusterID
		}
	}

	resp := &types.MergeContactsResponse{DryRun: dryRun}
	for _, sel := range selections {
		// A cancelled request finishes the in-flight transaction but
		// starts no further clusters.
		if err := ctx.Err(); err != nil {
			return resp.Finish(), err
		}

		merged, err := ms.mergeOne(ctx, tenantID, sel, dryRun, userID, userName)
		if err != nil {
			ms.log.Warn("Cluster merge failed", "tenant_id", tenantID, "cluster_id", sel.ClusterID, "error", err)
			resp.Errors = append(resp.Errors, types.MergeClusterError{
				ClusterID: sel.ClusterID,
				Reason:    err.Error(),
			})
			continue
		}
		resp.ClustersProcessed++
		resp.ContactsMerged += merged
	}

	ms.log.Info("Merge batch complete",
		"tenant_id", tenantID,
		"dry_run", dryRun,
		"clusters_processed", resp.ClustersProcessed,
		"contacts_merged", resp.ContactsMerged,
		"failed_clusters", len(resp.Errors),
	)
	return resp.Finish(), nil
}

// mergeOne validates and merges a single cluster. Returns the number
// of contacts absorbed into the primary.
func (ms *mergeService) mergeOne(ctx context.Context, tenantID uuid.UUID, sel types.ClusterSelection, dryRun bool, userID uuid.UUID, userName string) (int, error) {
	if len(sel.DuplicateIDs) == 0 {
		return 0, fmt.Errorf("%w: no duplicates listed", apperrors.ErrInvalidArgument)
	}
	for _, dup := range sel.DuplicateIDs {
		if dup == sel.PrimaryID {
			return 0, fmt.Errorf("%w: primary listed as duplicate", apperrors.ErrInvalidArgument)
		}
	}

	if dryRun {
		// Same validation and field resolution as a real run, zero writes.
		primary, duplicates, err := ms.loadAndValidate(ctx, nil, tenantID, sel)
		if err != nil {
			return 0, err
		}
		resolveFillForward(primary, duplicates)
		return len(duplicates), nil
	}

	// Once a cluster's transaction has started it runs to completion.
	// Cancellation is only honored between clusters, never by aborting
	// writes mid-flight.
	txCtx := context.WithoutCancel(ctx)
	merged := 0
	err := ms.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		primary, duplicates, err := ms.loadAndValidate(txCtx, tx, tenantID, sel)
		if err != nil {
			return err
		}

		fields, mergedFields := resolveFillForward(primary, duplicates)
		if len(fields) > 0 {
			if err := ms.contactRepo.UpdateFields(txCtx, tx, tenantID, primary.ID, fields); err != nil {
				return fmt.Errorf("fill-forward update: %w", err)
			}
		}

		if tags := unionTags(primary, duplicates); len(tags) > 0 {
			if err := ms.contactRepo.ReplaceTags(txCtx, tx, primary, tags); err != nil {
				return fmt.Errorf("merge tags: %w", err)
			}
		}

		if err := ms.historyRepo.RepointContact(txCtx, tx, tenantID, sel.DuplicateIDs, primary.ID); err != nil {
			return fmt.Errorf("repoint history: %w", err)
		}

		if err := ms.contactRepo.SoftDeleteByIDs(txCtx, tx, tenantID, sel.DuplicateIDs); err != nil {
			return fmt.Errorf("soft delete duplicates: %w", err)
		}

		payload := types.MergeAuditPayload{
			PrimaryContactID: primary.ID,
			MergedContactIDs: sel.DuplicateIDs,
			MergedFields:     mergedFields,
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal merge audit: %w", err)
		}
		audit := &types.ContactHistory{
			ID:                  uuid.New(),
			TenantID:            tenantID,
			ContactID:           primary.ID,
			Action:              types.HistoryActionMerge,
			Payload:             raw,
			PerformedByUserID:   userID,
			PerformedByUserName: userName,
			CreatedAt:           time.Now(),
		}
		if _, err := ms.historyRepo.Create(txCtx, tx, []*types.ContactHistory{audit}); err != nil {
			return fmt.Errorf("write merge audit: %w", err)
		}

		merged = len(duplicates)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return merged, nil
}

// loadAndValidate re-checks cluster membership against current state.
// Contacts can change between preview and merge; anything missing,
// inactive, or cross-tenant fails this cluster as stale.
func (ms *mergeService) loadAndValidate(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, sel types.ClusterSelection) (*types.Contact, []*types.Contact, error) {
	wanted := append([]uuid.UUID{sel.PrimaryID}, sel.DuplicateIDs...)
	contacts, err := ms.contactRepo.GetByIDs(ctx, tx, tenantID, wanted)
	if err != nil {
		return nil, nil, fmt.Errorf("load cluster contacts: %w", err)
	}
	found := make(map[uuid.UUID]*types.Contact, len(contacts))
	for _, c := range contacts {
		found[c.ID] = c
	}

	primary, ok := found[sel.PrimaryID]
	if !ok || !primary.IsActive {
		return nil, nil, fmt.Errorf("%w: primary contact %s not found or inactive", apperrors.ErrStaleCluster, sel.PrimaryID)
	}
	duplicates := make([]*types.Contact, 0, len(sel.DuplicateIDs))
	for _, id := range sel.DuplicateIDs {
		dup, ok := found[id]
		if !ok || !dup.IsActive {
			return nil, nil, fmt.Errorf("%w: duplicate contact %s not found or inactive", apperrors.ErrStaleCluster, id)
		}
		duplicates = append(duplicates, dup)
	}
	return primary, duplicates, nil
}

// resolveFillForward computes the fill-forward field updates. The
// primary's populated fields are never overwritten; an empty field is
// filled from the highest-priority duplicate that has a value.
// Returns the column update map and the provenance of each filled
// field for the audit row.
func resolveFillForward(primary *types.Contact, duplicates []*types.Contact) (map[string]interface{}, map[string]uuid.UUID) {
	donors := make([]*types.Contact, len(duplicates))
	copy(donors, duplicates)
	dedup.SortByPriority(donors)

	fields := map[string]interface{}{}
	mergedFields := map[string]uuid.UUID{}

	fill := func(column string, get func(*types.Contact) *string) {
		if v := get(primary); v != nil && *v != "" {
			return
		}
		for _, d := range donors {
			if v := get(d); v != nil && *v != "" {
				fields[column] = *v
				mergedFields[column] = d.ID
				return
			}
		}
	}

	fill("phone", func(c *types.Contact) *string { return c.Phone })
	fill("email", func(c *types.Contact) *string { return c.Email })
	fill("messaging_handle", func(c *types.Contact) *string { return c.MessagingHandle })
	fill("notes", func(c *types.Contact) *string { return c.Notes })

	return fields, mergedFields
}

// unionTags merges the tag sets of the primary and all duplicates.
func unionTags(primary *types.Contact, duplicates []*types.Contact) []*types.Tag {
	seen := make(map[uuid.UUID]struct{}, len(primary.Tags))
	union := make([]*types.Tag, 0, len(primary.Tags))
	add := func(tags []*types.Tag) {
		for _, t := range tags {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			union = append(union, t)
		}
	}
	add(primary.Tags)
	for _, d := range duplicates {
		add(d.Tags)
	}
	if len(union) == len(primary.Tags) {
		// Nothing gained; skip the association rewrite.
		return nil
	}
	return union
}
