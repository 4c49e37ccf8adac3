package mcp

import (
	"encoding/json"

	"github.com/rpggio/genoroot/internal/domain/activity"
	"github.com/rpggio/genoroot/internal/domain/family"
)

// MemberFields carries the biographical fields of a new member.
type MemberFields struct {
	FirstName    string            `json:"first_name,omitempty"`
	MiddleName   string            `json:"middle_name,omitempty"`
	LastName     string            `json:"last_name,omitempty"`
	BirthDate    string            `json:"birth_date,omitempty"`
	DeathDate    string            `json:"death_date,omitempty"`
	Gender       string            `json:"gender,omitempty"`
	BirthPlace   string            `json:"birth_place,omitempty"`
	DeathPlace   string            `json:"death_place,omitempty"`
	Occupation   string            `json:"occupation,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	ProfileImage string            `json:"profile_image,omitempty"`
	Memories     []json.RawMessage `json:"memories,omitempty"`
	Documents    []json.RawMessage `json:"documents,omitempty"`
}

func (f MemberFields) input() family.MemberInput {
	return family.MemberInput{
		FirstName:    f.FirstName,
		MiddleName:   f.MiddleName,
		LastName:     f.LastName,
		BirthDate:    f.BirthDate,
		DeathDate:    f.DeathDate,
		Gender:       f.Gender,
		BirthPlace:   f.BirthPlace,
		DeathPlace:   f.DeathPlace,
		Occupation:   f.Occupation,
		Notes:        f.Notes,
		ProfileImage: f.ProfileImage,
		Memories:     f.Memories,
		Documents:    f.Documents,
	}
}

// MemberPatch is a partial member update; omitted fields are unchanged.
type MemberPatch struct {
	FirstName    *string           `json:"first_name,omitempty"`
	MiddleName   *string           `json:"middle_name,omitempty"`
	LastName     *string           `json:"last_name,omitempty"`
	BirthDate    *string           `json:"birth_date,omitempty"`
	DeathDate    *string           `json:"death_date,omitempty"`
	Gender       *string           `json:"gender,omitempty"`
	BirthPlace   *string           `json:"birth_place,omitempty"`
	DeathPlace   *string           `json:"death_place,omitempty"`
	Occupation   *string           `json:"occupation,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	ProfileImage *string           `json:"profile_image,omitempty"`
	Memories     []json.RawMessage `json:"memories,omitempty"`
	Documents    []json.RawMessage `json:"documents,omitempty"`
}

func (p MemberPatch) update() family.MemberUpdate {
	return family.MemberUpdate{
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		BirthDate:    p.BirthDate,
		DeathDate:    p.DeathDate,
		Gender:       p.Gender,
		BirthPlace:   p.BirthPlace,
		DeathPlace:   p.DeathPlace,
		Occupation:   p.Occupation,
		Notes:        p.Notes,
		ProfileImage: p.ProfileImage,
		Memories:     p.Memories,
		Documents:    p.Documents,
	}
}

type CreateTreeParams struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Privacy     family.Privacy `json:"privacy,omitempty"`
	Root        MemberFields   `json:"root"`
}

type TreeIDParams struct {
	TreeID string `json:"tree_id"`
}

type UpdateTreeParams struct {
	TreeID      string          `json:"tree_id"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Privacy     *family.Privacy `json:"privacy,omitempty"`
	RootPerson  *string         `json:"root_person,omitempty"`
}

type AddMemberParams struct {
	TreeID       string       `json:"tree_id"`
	Member       MemberFields `json:"member"`
	RelatedTo    string       `json:"related_to,omitempty"`
	Relationship string       `json:"relationship,omitempty"`
}

type GetMemberParams struct {
	MemberID string `json:"member_id"`
	TreeID   string `json:"tree_id,omitempty"`
}

type ListMembersParams struct {
	TreeID     string `json:"tree_id"`
	Generation *int   `json:"generation,omitempty"`
}

type UpdateMemberParams struct {
	MemberID string      `json:"member_id"`
	Updates  MemberPatch `json:"updates"`
}

type DeleteMemberParams struct {
	TreeID   string `json:"tree_id"`
	MemberID string `json:"member_id"`
}

type RelationshipParams struct {
	MemberID  string `json:"member_id"`
	RelatedID string `json:"related_id"`
	Kind      string `json:"kind"`
}

type SearchMembersParams struct {
	Query  string `json:"query"`
	TreeID string `json:"tree_id,omitempty"`
}

type FilterMembersParams struct {
	Query         string              `json:"query,omitempty"`
	TreeID        string              `json:"tree_id,omitempty"`
	Gender        string              `json:"gender,omitempty"`
	Status        family.MemberStatus `json:"status,omitempty"`
	BirthYearFrom int                 `json:"birth_year_from,omitempty"`
	BirthYearTo   int                 `json:"birth_year_to,omitempty"`
	Location      string              `json:"location,omitempty"`
}

type GetRecentActivityParams struct {
	TreeID string                 `json:"tree_id,omitempty"`
	Type   *activity.ActivityType `json:"type,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
}

type ImportTreeParams struct {
	Data string `json:"data"`
}

type CheckIntegrityParams struct {
	TreeID string `json:"tree_id,omitempty"`
}

// Responses

type UpdateTreeResponse struct {
	Updated bool         `json:"updated"`
	Tree    *family.Tree `json:"tree,omitempty"`
}

type UpdateMemberResponse struct {
	Updated bool           `json:"updated"`
	Member  *family.Member `json:"member,omitempty"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type RelationshipResponse struct {
	Applied bool `json:"applied"`
}

type StatisticsResponse struct {
	family.Statistics
	GenerationSpan int `json:"generationSpan"`
}

type GenerationsResponse struct {
	Estimate int            `json:"estimate"`
	Span     int            `json:"span"`
	Levels   map[string]int `json:"levels"`
}

type IntegrityResponse struct {
	OrphanedNamespaces []string                              `json:"orphanedNamespaces"`
	DanglingReferences map[string][]family.DanglingReference `json:"danglingReferences"`
}
