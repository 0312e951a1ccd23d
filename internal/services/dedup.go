package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/productivityhub/backend/internal/dedup"
	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/repos"
	"github.com/productivityhub/backend/internal/types"
)

// DedupService wires blocking, similarity scoring, and clustering
// into the preview operation, and validates selections before handing
// them to the merge executor. All reads are tenant-scoped active
// contacts; nothing here ever crosses tenants.
type DedupService interface {
	FindDuplicateClusters(ctx context.Context, tenantID uuid.UUID, req *types.DedupPreviewRequest) (*types.DedupPreviewResponse, error)
	MergeContacts(ctx context.Context, tenantID uuid.UUID, req *types.MergeContactsRequest, userID uuid.UUID, userName string) (*types.MergeContactsResponse, error)
}

type dedupService struct {
	log          *logger.Logger
	cfg          dedup.Config
	contactRepo  repos.ContactRepo
	mergeService MergeService
	selections   SelectionService
}

func NewDedupService(log *logger.Logger, cfg dedup.Config, contactRepo repos.ContactRepo, mergeService MergeService, selections SelectionService) DedupService {
	serviceLog := log.With("service", "DedupService")
	return &dedupService{
		log:          serviceLog,
		cfg:          cfg,
		contactRepo:  contactRepo,
		mergeService: mergeService,
		selections:   selections,
	}
}

func (ds *dedupService) FindDuplicateClusters(ctx context.Context, tenantID uuid.UUID, req *types.DedupPreviewRequest) (*types.DedupPreviewResponse, error) {
	if req == nil {
		req = &types.DedupPreviewRequest{}
	}
	minScore := ds.cfg.MinConfidenceScore
	if req.MinConfidenceScore != nil {
		minScore = *req.MinConfidenceScore
	}
	if minScore < 0 || minScore > 1 {
		return nil, fmt.Errorf("%w: min_confidence_score must be in [0,1]", apperrors.ErrInvalidArgument)
	}
	if req.MaxClusterSize < 0 {
		return nil, fmt.Errorf("%w: max_cluster_size cannot be negative", apperrors.ErrInvalidArgument)
	}

	filter := req.Filter
	if req.SelectionToken != "" {
		resolved, err := ds.selections.Resolve(ctx, tenantID, req.SelectionToken)
		if err != nil {
			return nil, err
		}
		filter = resolved
	}

	contacts, err := ds.contactRepo.ListActive(ctx, nil, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	ds.log.Info("Dedup preview started",
		"tenant_id", tenantID,
		"contacts", len(contacts),
		"min_confidence_score", minScore,
	)

	blocks := dedup.BuildBlocks(contacts)
	pairs, err := dedup.CandidatePairs(blocks, ds.cfg.MaxCandidatePairs)
	if err != nil {
		return nil, err
	}

	contactsByID := make(map[uuid.UUID]*types.Contact, len(contacts))
	for _, c := range contacts {
		contactsByID[c.ID] = c
	}

	scored, err := ds.scorePairs(ctx, pairs, contactsByID)
	if err != nil {
		return nil, err
	}

	clusters := dedup.BuildClusters(scored, contactsByID, minScore, req.MaxClusterSize)

	views := make([]*types.DuplicateClusterView, 0, len(clusters))
	for _, cl := range clusters {
		memberIDs := make([]uuid.UUID, len(cl.Members))
		for i, m := range cl.Members {
			memberIDs[i] = m.ID
		}
		views = append(views, &types.DuplicateClusterView{
			ClusterID:          cl.ID,
			MemberIDs:          memberIDs,
			Members:            cl.Members,
			SuggestedPrimaryID: cl.SuggestedPrimaryID,
			Confidence:         cl.Confidence,
		})
	}

	ds.log.Info("Dedup preview complete",
		"tenant_id", tenantID,
		"candidate_pairs", len(pairs),
		"clusters", len(views),
	)
	return &types.DedupPreviewResponse{
		Clusters:      views,
		TotalClusters: len(views),
		TotalContacts: len(contacts),
	}, nil
}

// scorePairs runs the similarity engine over the candidate pairs in
// parallel stripes. Each worker writes its own index range, so no
// locking is needed on the result slice.
func (ds *dedupService) scorePairs(ctx context.Context, pairs []dedup.Pair, contactsByID map[uuid.UUID]*types.Contact) ([]dedup.ScoredPair, error) {
	scored := make([]dedup.ScoredPair, len(pairs))
	scorer := dedup.NewScorer(ds.cfg)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers <= 1 {
		for i, p := range pairs {
			res := scorer.Score(contactsByID[p.A], contactsByID[p.B])
			scored[i] = dedup.ScoredPair{Pair: p, PerField: res.PerField, Overall: res.Overall}
		}
		return scored, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	stride := (len(pairs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * stride
		hi := lo + stride
		if hi > len(pairs) {
			hi = len(pairs)
		}
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p := pairs[i]
				res := scorer.Score(contactsByID[p.A], contactsByID[p.B])
				scored[i] = dedup.ScoredPair{Pair: p, PerField: res.PerField, Overall: res.Overall}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func (ds *dedupService) MergeContacts(ctx context.Context, tenantID uuid.UUID, req *types.MergeContactsRequest, userID uuid.UUID, userName string) (*types.MergeContactsResponse, error) {
	if req == nil || len(req.Clusters) == 0 {
		return nil, fmt.Errorf("%w: no clusters selected", apperrors.ErrInvalidArgument)
	}
	for _, sel := range req.Clusters {
		if sel.PrimaryID == uuid.Nil {
			return nil, fmt.Errorf("%w: cluster %s has no primary", apperrors.ErrInvalidArgument, sel.ClusterID)
		}
	}
	ds.log.Info("Merge requested",
		"tenant_id", tenantID,
		"clusters", len(req.Clusters),
		"dry_run", req.DryRun,
	)
	return ds.mergeService.MergeClusters(ctx, tenantID, req.Clusters, req.DryRun, userID, userName)
}
