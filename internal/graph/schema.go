package graph

import "time"

// ArchiveSummary describes a stored archive without loading its members.
type ArchiveSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MemberCount   int       `json:"memberCount"`
	RelationCount int       `json:"relationCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// StoreStats summarizes everything held by a store.
type StoreStats struct {
	ArchiveCount  int `json:"archiveCount"`
	MemberCount   int `json:"memberCount"`
	RelationCount int `json:"relationCount"`
}
