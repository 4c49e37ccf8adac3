package activity

import (
	"time"

	"github.com/rpggio/genoroot/internal/domain/family"
)

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeTreeCreated ActivityType = "tree_created"
	TypeMemberAdded ActivityType = "member_added"
)

// ActivityEntry represents an event in the activity feed
type ActivityEntry struct {
	Type       ActivityType `json:"type"`
	TreeID     string       `json:"treeId"`
	TreeName   string       `json:"treeName"`
	MemberID   string       `json:"memberId,omitempty"`
	MemberName string       `json:"memberName,omitempty"`
	Summary    string       `json:"summary"`
	Timestamp  time.Time    `json:"timestamp"`
}

// TreeSummary is a dashboard card for one tree.
type TreeSummary struct {
	Tree        family.Tree `json:"tree"`
	MemberCount int         `json:"memberCount"`
	Tags        []string    `json:"tags"`
}
