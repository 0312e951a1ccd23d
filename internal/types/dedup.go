package types

import (
	"time"

	"github.com/google/uuid"
)

// ContactFilter narrows the contact set a bulk operation acts on.
// A serialized filter is what a selection token resolves back into.
type ContactFilter struct {
	Name         string      `json:"name,omitempty"`
	TagIDs       []uuid.UUID `json:"tag_ids,omitempty"`
	UpdatedAfter *time.Time  `json:"updated_after,omitempty"`
	Limit        int         `json:"limit,omitempty"`
	Offset       int         `json:"offset,omitempty"`
}

// DedupPreviewRequest tunes one preview run. MinConfidenceScore is a
// pointer so an explicit 0 is distinguishable from an absent field,
// which falls back to the configured default.
type DedupPreviewRequest struct {
	MinConfidenceScore *float64       `json:"min_confidence_score,omitempty"`
	MaxClusterSize     int            `json:"max_cluster_size,omitempty"`
	SelectionToken     string         `json:"selection_token,omitempty"`
	Filter             *ContactFilter `json:"filter,omitempty"`
}

// DuplicateClusterView is one suggested duplicate group in a preview
// response. ClusterID is derived from the sorted member IDs, so the
// same group of contacts always yields the same id across previews.
type DuplicateClusterView struct {
	ClusterID          string      `json:"cluster_id"`
	MemberIDs          []uuid.UUID `json:"member_ids"`
	Members            []*Contact  `json:"members"`
	SuggestedPrimaryID uuid.UUID   `json:"suggested_primary_id"`
	Confidence         float64     `json:"confidence"`
}

type DedupPreviewResponse struct {
	Clusters      []*DuplicateClusterView `json:"clusters"`
	TotalClusters int                     `json:"total_clusters"`
	TotalContacts int                     `json:"total_contacts"`
}

// ClusterSelection is the client's approval of one preview cluster.
// The payload is self-contained (primary plus duplicates) so the merge
// can re-validate against current state instead of trusting a cache.
type ClusterSelection struct {
	ClusterID    string      `json:"cluster_id"`
	PrimaryID    uuid.UUID   `json:"primary_id"`
	DuplicateIDs []uuid.UUID `json:"duplicate_ids"`
}

type MergeContactsRequest struct {
	Clusters []ClusterSelection `json:"clusters"`
	DryRun   bool               `json:"dry_run"`
}

type MergeClusterError struct {
	ClusterID string `json:"cluster_id"`
	Reason    string `json:"reason"`
}

type MergeContactsResponse struct {
	Success           bool                `json:"success"`
	DryRun            bool                `json:"dry_run"`
	ClustersProcessed int                 `json:"clusters_processed"`
	ContactsMerged    int                 `json:"contacts_merged"`
	Errors            []MergeClusterError `json:"errors,omitempty"`
}

// Finish settles the batch verdict: partial success still counts as
// success, with the failed clusters reported in Errors. Success is
// false only when every selected cluster failed.
func (r *MergeContactsResponse) Finish() *MergeContactsResponse {
	r.Success = r.ClustersProcessed > 0 || len(r.Errors) == 0
	return r
}
