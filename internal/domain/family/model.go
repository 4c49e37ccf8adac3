package family

import (
	"encoding/json"
	"strings"
	"time"
)

// Privacy controls who may view a tree.
type Privacy string

const (
	PrivacyPrivate Privacy = "private"
	PrivacyFamily  Privacy = "family"
	PrivacyPublic  Privacy = "public"
)

// Valid reports whether p is one of the known privacy levels.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPrivate, PrivacyFamily, PrivacyPublic:
		return true
	}
	return false
}

// Tree is a named collection of members. It is persisted as one element of
// the "familyTrees" array.
type Tree struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Privacy      Privacy   `json:"privacy"`
	RootPerson   *string   `json:"rootPerson"`
	Members      []string  `json:"members"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// HasMember reports whether id is listed in the tree.
func (t *Tree) HasMember(id string) bool {
	for _, memberID := range t.Members {
		if memberID == id {
			return true
		}
	}
	return false
}

// Member is a person record. Relationship lists hold member ids and are kept
// two-sided by the relationship operations; nothing else enforces that.
type Member struct {
	ID           string            `json:"id"`
	FirstName    string            `json:"firstName"`
	MiddleName   string            `json:"middleName"`
	LastName     string            `json:"lastName"`
	BirthDate    string            `json:"birthDate"`
	DeathDate    string            `json:"deathDate"`
	Gender       string            `json:"gender"`
	BirthPlace   string            `json:"birthPlace"`
	DeathPlace   string            `json:"deathPlace"`
	Occupation   string            `json:"occupation"`
	Notes        string            `json:"notes"`
	ProfileImage string            `json:"profileImage"`
	Parents      []string          `json:"parents"`
	Children     []string          `json:"children"`
	Spouses      []string          `json:"spouses"`
	Siblings     []string          `json:"siblings"`
	Memories     []json.RawMessage `json:"memories"`
	Documents    []json.RawMessage `json:"documents"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastModified time.Time         `json:"lastModified"`
}

// FullName joins the non-empty name parts with single spaces.
func (m *Member) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{m.FirstName, m.MiddleName, m.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// Living reports whether the member has no recorded death date.
func (m *Member) Living() bool {
	return m.DeathDate == ""
}

// Normalize replaces nil lists with empty ones so the persisted JSON always
// carries arrays.
func (m *Member) Normalize() {
	m.Parents = nonNil(m.Parents)
	m.Children = nonNil(m.Children)
	m.Spouses = nonNil(m.Spouses)
	m.Siblings = nonNil(m.Siblings)
	if m.Memories == nil {
		m.Memories = []json.RawMessage{}
	}
	if m.Documents == nil {
		m.Documents = []json.RawMessage{}
	}
}

// Normalize replaces a nil member list with an empty one.
func (t *Tree) Normalize() {
	t.Members = nonNil(t.Members)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// MemberInput carries the caller-supplied fields of a new member. Anything
// left empty is stored as an empty string or array.
type MemberInput struct {
	FirstName    string
	MiddleName   string
	LastName     string
	BirthDate    string
	DeathDate    string
	Gender       string
	BirthPlace   string
	DeathPlace   string
	Occupation   string
	Notes        string
	ProfileImage string
	Parents      []string
	Children     []string
	Spouses      []string
	Siblings     []string
	Memories     []json.RawMessage
	Documents    []json.RawMessage
}

// MemberUpdate is a shallow patch. Nil fields are left unchanged.
type MemberUpdate struct {
	FirstName    *string
	MiddleName   *string
	LastName     *string
	BirthDate    *string
	DeathDate    *string
	Gender       *string
	BirthPlace   *string
	DeathPlace   *string
	Occupation   *string
	Notes        *string
	ProfileImage *string
	Parents      []string
	Children     []string
	Spouses      []string
	Siblings     []string
	Memories     []json.RawMessage
	Documents    []json.RawMessage
}

func (u MemberUpdate) apply(m *Member) {
	setString(&m.FirstName, u.FirstName)
	setString(&m.MiddleName, u.MiddleName)
	setString(&m.LastName, u.LastName)
	setString(&m.BirthDate, u.BirthDate)
	setString(&m.DeathDate, u.DeathDate)
	setString(&m.Gender, u.Gender)
	setString(&m.BirthPlace, u.BirthPlace)
	setString(&m.DeathPlace, u.DeathPlace)
	setString(&m.Occupation, u.Occupation)
	setString(&m.Notes, u.Notes)
	setString(&m.ProfileImage, u.ProfileImage)
	if u.Parents != nil {
		m.Parents = u.Parents
	}
	if u.Children != nil {
		m.Children = u.Children
	}
	if u.Spouses != nil {
		m.Spouses = u.Spouses
	}
	if u.Siblings != nil {
		m.Siblings = u.Siblings
	}
	if u.Memories != nil {
		m.Memories = u.Memories
	}
	if u.Documents != nil {
		m.Documents = u.Documents
	}
}

// CreateTreeRequest defines tree creation inputs. The root person is created
// only when both FirstName and LastName of Root are set.
type CreateTreeRequest struct {
	Name        string
	Description string
	Privacy     Privacy
	Root        MemberInput
}

// TreeUpdate is a shallow patch. Nil fields are left unchanged.
type TreeUpdate struct {
	Name        *string
	Description *string
	Privacy     *Privacy
	RootPerson  *string
}

func (u TreeUpdate) apply(t *Tree) {
	setString(&t.Name, u.Name)
	setString(&t.Description, u.Description)
	if u.Privacy != nil {
		t.Privacy = *u.Privacy
	}
	if u.RootPerson != nil {
		if *u.RootPerson == "" {
			t.RootPerson = nil
		} else {
			root := *u.RootPerson
			t.RootPerson = &root
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Statistics summarizes one tree.
type Statistics struct {
	TotalMembers    int `json:"totalMembers"`
	LivingMembers   int `json:"livingMembers"`
	DeceasedMembers int `json:"deceasedMembers"`
	Generations     int `json:"generations"`
	AverageAge      int `json:"averageAge"`
}

// Overview aggregates every tree for the dashboard.
type Overview struct {
	TotalTrees       int `json:"totalTrees"`
	TotalMembers     int `json:"totalMembers"`
	TotalGenerations int `json:"totalGenerations"`
	TotalMemories    int `json:"totalMemories"`
}

// MemberStatus filters members by whether a death date is recorded.
type MemberStatus string

const (
	StatusAny      MemberStatus = ""
	StatusLiving   MemberStatus = "living"
	StatusDeceased MemberStatus = "deceased"
)

// MemberFilter combines the advanced search criteria. Zero values disable a
// criterion.
type MemberFilter struct {
	Query         string
	TreeID        string
	Gender        string
	Status        MemberStatus
	BirthYearFrom int
	BirthYearTo   int
	Location      string
}

// DanglingReference is a relationship entry pointing at a member id that no
// longer exists in the tree's namespace. Kind names the list the entry sits
// in: Kind child means TargetID is listed among MemberID's children.
type DanglingReference struct {
	MemberID string           `json:"memberId"`
	Kind     RelationshipKind `json:"kind"`
	TargetID string           `json:"targetId"`
}

// Bundle is the export format of one tree and its members.
type Bundle struct {
	Tree    Tree     `json:"tree"`
	Members []Member `json:"members"`
}
