// Package archive holds the family archive model: members, typed relations
// between them, and the editing operations the archive editor performs on a
// snapshot before it is persisted.
package archive

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Enums ---

// Gender of a member. The zero value behaves like GenderUnknown.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender accepts male, female, unknown or an empty string (unknown),
// case-insensitively.
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderUnknown:
		return g, nil
	case "":
		return GenderUnknown, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

// RelationType classifies a stored relation between two members.
type RelationType string

const (
	// RelationParent is directed: FromMemberID is the parent of ToMemberID.
	RelationParent RelationType = "parent"
	// RelationSpouse and RelationSibling are symmetric but stored once.
	RelationSpouse  RelationType = "spouse"
	RelationSibling RelationType = "sibling"

	// RelationChild is never stored. It is the inverse of RelationParent
	// reported by Related and accepted by AddMemberWithRelation.
	RelationChild RelationType = "child"
)

// Valid reports whether t may be stored on a Relation.
func (t RelationType) Valid() bool {
	switch t {
	case RelationParent, RelationSpouse, RelationSibling:
		return true
	default:
		return false
	}
}

// DefaultMemberName is given to members created without a name.
const DefaultMemberName = "Новый член семьи"

// --- Models ---

// LifeEvent is one entry on a member's life path timeline.
type LifeEvent struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Member is a person record within an archive.
type Member struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Relationship string      `json:"relationship,omitempty"` // legacy free text
	Gender       Gender      `json:"gender,omitempty"`
	Generation   int         `json:"generation,omitempty"`
	DisplayRole  string      `json:"displayRole,omitempty"`
	BirthDate    string      `json:"birthDate"`
	DeathDate    string      `json:"deathDate,omitempty"`
	Biography    string      `json:"biography"`
	LifePath     []LifeEvent `json:"lifePath,omitempty"`
	PhotoURL     string      `json:"photoUrl"`
	Photos       []string    `json:"photos"`
	Videos       []string    `json:"videos,omitempty"`
	Quotes       []string    `json:"quotes"`
}

// Relation is a typed, directed edge between two members.
type Relation struct {
	ID           string       `json:"id"`
	FromMemberID string       `json:"fromMemberId"`
	ToMemberID   string       `json:"toMemberId"`
	Type         RelationType `json:"relationType"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Archive is one family's collection of members and relations.
type Archive struct {
	ID           string     `json:"id"` // slug
	Name         string     `json:"name"`
	HeroImage    string     `json:"heroImage"`
	Members      []Member   `json:"members"`
	Relations    []Relation `json:"relations"`
	RootMemberID string     `json:"rootMemberId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// now is swapped out by tests that assert on timestamps.
var now = func() time.Time { return time.Now().UTC() }

// New returns an empty archive whose ID is a slug derived from name.
func New(name string) *Archive {
	t := now()
	return &Archive{
		ID:        Slug(name, t),
		Name:      name,
		Members:   []Member{},
		Relations: []Relation{},
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// Slug lowercases name, replaces every character outside [a-z0-9] with a
// dash and appends the creation time in base 36 milliseconds.
func Slug(name string, t time.Time) string {
	base := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(name))
	return base + "-" + strconv.FormatInt(t.UnixMilli(), 36)
}

// NewMember returns an unnamed member with a fresh ID.
func NewMember() Member {
	return Member{
		ID:       uuid.NewString(),
		Gender:   GenderUnknown,
		LifePath: []LifeEvent{},
		Photos:   []string{},
		Videos:   []string{},
		Quotes:   []string{},
	}
}

// NewRelation returns a relation with a fresh ID.
func NewRelation(from, to string, t RelationType) Relation {
	return Relation{
		ID:           uuid.NewString(),
		FromMemberID: from,
		ToMemberID:   to,
		Type:         t,
		CreatedAt:    now(),
	}
}

// Member returns the member with the given ID.
func (a *Archive) Member(id string) (*Member, bool) {
	for i := range a.Members {
		if a.Members[i].ID == id {
			return &a.Members[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (a *Archive) Clone() *Archive {
	if a == nil {
		return nil
	}
	out := *a
	out.Members = make([]Member, len(a.Members))
	for i, m := range a.Members {
		m.LifePath = append([]LifeEvent(nil), m.LifePath...)
		m.Photos = append([]string(nil), m.Photos...)
		m.Videos = append([]string(nil), m.Videos...)
		m.Quotes = append([]string(nil), m.Quotes...)
		out.Members[i] = m
	}
	out.Relations = append(make([]Relation, 0, len(a.Relations)), a.Relations...)
	return &out
}

func (a *Archive) touch() {
	a.UpdatedAt = now()
}
