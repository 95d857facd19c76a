package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock pins the package clock for the duration of a test.
func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a := New("Ivanov Family")
	a.Members = []Member{
		{ID: "me", Name: "Я", Gender: GenderMale},
		{ID: "mom", Name: "Мама", Gender: GenderFemale},
	}
	a.Relations = []Relation{
		{ID: "r1", FromMemberID: "mom", ToMemberID: "me", Type: RelationParent},
	}
	return a
}

func TestSlug(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, "ivanov-family-loyw3v28", Slug("Ivanov Family", at))
	assert.Equal(t, "-----loyw3v28", Slug("Дом!", at))
}

func TestNew(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(t, at)

	a := New("Smith")
	assert.Equal(t, Slug("Smith", at), a.ID)
	assert.Equal(t, at, a.CreatedAt)
	assert.Equal(t, at, a.UpdatedAt)
	assert.Empty(t, a.Members)
	assert.Empty(t, a.Relations)
}

func TestAddMember_DefaultName(t *testing.T) {
	a := newTestArchive(t)
	m := a.AddMember("")
	assert.Equal(t, DefaultMemberName, m.Name)
	assert.Equal(t, GenderUnknown, m.Gender)
	assert.NotEmpty(t, m.ID)
	assert.Len(t, a.Members, 3)
}

func TestAddMemberWithRelation_Direction(t *testing.T) {
	tests := []struct {
		name     string
		kind     RelationType
		wantType RelationType
		newIsTo  bool
	}{
		{"parent points at related", RelationParent, RelationParent, false},
		{"child stored as parent", RelationChild, RelationParent, true},
		{"spouse from related", RelationSpouse, RelationSpouse, true},
		{"sibling from related", RelationSibling, RelationSibling, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArchive(t)
			m, err := a.AddMemberWithRelation("me", tt.kind, Member{Name: "Новый"})
			require.NoError(t, err)

			rel := a.Relations[len(a.Relations)-1]
			assert.Equal(t, tt.wantType, rel.Type)
			if tt.newIsTo {
				assert.Equal(t, "me", rel.FromMemberID)
				assert.Equal(t, m.ID, rel.ToMemberID)
			} else {
				assert.Equal(t, m.ID, rel.FromMemberID)
				assert.Equal(t, "me", rel.ToMemberID)
			}
		})
	}
}

func TestAddMemberWithRelation_Errors(t *testing.T) {
	a := newTestArchive(t)

	_, err := a.AddMemberWithRelation("ghost", RelationSpouse, Member{})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = a.AddMemberWithRelation("me", RelationType("cousin"), Member{})
	assert.ErrorIs(t, err, ErrInvalidRelationType)

	assert.Len(t, a.Members, 2, "failed adds must not leave members behind")
}

func TestAddRelation_Dedupe(t *testing.T) {
	a := newTestArchive(t)

	rel, added, err := a.AddRelation("mom", "me", RelationParent)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "r1", rel.ID)
	assert.Len(t, a.Relations, 1)

	// Reverse direction is a different relation.
	_, added, err = a.AddRelation("me", "mom", RelationSibling)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, a.Relations, 2)
}

func TestAddRelation_Rejects(t *testing.T) {
	a := newTestArchive(t)

	_, _, err := a.AddRelation("me", "mom", RelationChild)
	assert.ErrorIs(t, err, ErrInvalidRelationType)

	_, _, err = a.AddRelation("me", "me", RelationSpouse)
	assert.ErrorIs(t, err, ErrSelfRelation)
}

func TestRemoveMember_Cascades(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.SetRoot("mom"))

	require.NoError(t, a.RemoveMember("mom"))
	assert.Len(t, a.Members, 1)
	assert.Empty(t, a.Relations)
	assert.Empty(t, a.RootMemberID)

	assert.ErrorIs(t, a.RemoveMember("mom"), ErrMemberNotFound)
}

func TestRemoveRelation(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.RemoveRelation("r1"))
	assert.Empty(t, a.Relations)
	assert.ErrorIs(t, a.RemoveRelation("r1"), ErrRelationNotFound)
}

func TestUpdateMember(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.UpdateMember("mom", func(m *Member) {
		m.Name = "Мария"
		m.ID = "hijack"
	}))
	m, ok := a.Member("mom")
	require.True(t, ok)
	assert.Equal(t, "Мария", m.Name)

	assert.ErrorIs(t, a.UpdateMember("ghost", func(*Member) {}), ErrMemberNotFound)
}

func TestSetRoot_Unknown(t *testing.T) {
	a := newTestArchive(t)
	assert.ErrorIs(t, a.SetRoot("ghost"), ErrMemberNotFound)
	require.NoError(t, a.SetRoot(""))
}

func TestRelated(t *testing.T) {
	a := newTestArchive(t)
	a.Relations = append(a.Relations,
		Relation{ID: "r2", FromMemberID: "me", ToMemberID: "ghost", Type: RelationSpouse},
	)

	fromMom := a.Related("mom")
	require.Len(t, fromMom, 1)
	assert.Equal(t, "me", fromMom[0].Member.ID)
	assert.Equal(t, RelationParent, fromMom[0].Type)

	fromMe := a.Related("me")
	require.Len(t, fromMe, 1, "dangling spouse must be skipped")
	assert.Equal(t, "mom", fromMe[0].Member.ID)
	assert.Equal(t, RelationChild, fromMe[0].Type)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Archive)
		wantErr error
	}{
		{"valid", func(*Archive) {}, nil},
		{"duplicate member", func(a *Archive) {
			a.Members = append(a.Members, Member{ID: "me"})
		}, ErrDuplicateMember},
		{"dangling relation", func(a *Archive) {
			a.Relations = append(a.Relations, Relation{ID: "x", FromMemberID: "me", ToMemberID: "ghost", Type: RelationSpouse})
		}, ErrDanglingRelation},
		{"bad type", func(a *Archive) {
			a.Relations[0].Type = "cousin"
		}, ErrInvalidRelationType},
		{"self relation", func(a *Archive) {
			a.Relations[0].ToMemberID = "mom"
		}, ErrSelfRelation},
		{"unknown root", func(a *Archive) {
			a.RootMemberID = "ghost"
		}, ErrMemberNotFound},
		{"member without id", func(a *Archive) {
			a.Members = append(a.Members, Member{Name: "Без ID"})
		}, ErrMissingID},
		{"relation without id", func(a *Archive) {
			a.Relations[0].ID = ""
		}, ErrMissingID},
		{"duplicate relation id", func(a *Archive) {
			a.Relations = append(a.Relations, Relation{ID: "r1", FromMemberID: "me", ToMemberID: "mom", Type: RelationSibling})
		}, ErrDuplicateRelation},
		{"parent cycle", func(a *Archive) {
			a.Relations = append(a.Relations, Relation{ID: "x", FromMemberID: "me", ToMemberID: "mom", Type: RelationParent})
		}, ErrParentCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArchive(t)
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAssignMissingIDs(t *testing.T) {
	a := newTestArchive(t)
	a.Members = append(a.Members, Member{Name: "Сестра"})
	a.Relations = append(a.Relations,
		Relation{FromMemberID: "mom", ToMemberID: "me", Type: RelationParent},
		Relation{FromMemberID: "me", ToMemberID: "mom", Type: RelationSibling},
	)
	require.ErrorIs(t, a.Validate(), ErrMissingID)

	assert.Equal(t, 3, a.AssignMissingIDs())
	assert.NotEmpty(t, a.Members[2].ID)
	assert.NotEqual(t, a.Relations[1].ID, a.Relations[2].ID)
	assert.Equal(t, "r1", a.Relations[0].ID, "existing ids are kept")
	require.NoError(t, a.Validate())
	assert.Zero(t, a.AssignMissingIDs())
}

func TestClone_Independent(t *testing.T) {
	a := newTestArchive(t)
	a.Members[0].Photos = []string{"a.jpg"}

	c := a.Clone()
	c.Members[0].Name = "changed"
	c.Members[0].Photos[0] = "b.jpg"
	c.Relations[0].Type = RelationSpouse

	assert.Equal(t, "Я", a.Members[0].Name)
	assert.Equal(t, "a.jpg", a.Members[0].Photos[0])
	assert.Equal(t, RelationParent, a.Relations[0].Type)
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"male", GenderMale},
		{" Female ", GenderFemale},
		{"UNKNOWN", GenderUnknown},
		{"", GenderUnknown},
	}
	for _, tt := range tests {
		got, err := ParseGender(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseGender("other")
	require.Error(t, err)
}
