package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kinship/internal/archive"
)

// fixtureArchive builds a small three-generation family. Timestamps are
// millisecond precision so every backend round-trips them exactly.
func fixtureArchive(id string, updated time.Time) *archive.Archive {
	created := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	return &archive.Archive{
		ID:        id,
		Name:      "Семья " + id,
		HeroImage: "hero.jpg",
		Members: []archive.Member{
			{ID: "gp", Name: "Дед", Gender: archive.GenderMale, BirthDate: "1930-05-01", DeathDate: "2001-02-03"},
			{ID: "p", Name: "Папа", Gender: archive.GenderMale, Generation: -1,
				LifePath: []archive.LifeEvent{{Year: "1980", Title: "Свадьба", Description: "Москва"}},
				Photos:   []string{"a.jpg", "b.jpg"}, Quotes: []string{"Терпение и труд"}},
			{ID: "me", Name: "Я", Gender: archive.GenderFemale, DisplayRole: "Автор", Relationship: "я"},
			{ID: "sp", Name: "Муж", Gender: archive.GenderMale, Videos: []string{"v.mp4"}},
		},
		Relations: []archive.Relation{
			{ID: "r1", FromMemberID: "gp", ToMemberID: "p", Type: archive.RelationParent, CreatedAt: created},
			{ID: "r2", FromMemberID: "p", ToMemberID: "me", Type: archive.RelationParent, CreatedAt: created},
			{ID: "r3", FromMemberID: "me", ToMemberID: "sp", Type: archive.RelationSpouse, CreatedAt: created},
		},
		RootMemberID: "me",
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("RoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := fixtureArchive("ivanovs", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

		require.NoError(t, s.SaveArchive(ctx, want))
		got, err := s.GetArchive(ctx, want.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetArchive(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SaveReplacesSnapshot", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a := fixtureArchive("ivanovs", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, s.SaveArchive(ctx, a))

		require.NoError(t, a.RemoveMember("sp"))
		a.Rename("Ивановы")
		a.UpdatedAt = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.SaveArchive(ctx, a))

		got, err := s.GetArchive(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Ивановы", got.Name)
		assert.Len(t, got.Members, 3)
		assert.Len(t, got.Relations, 2)
	})

	t.Run("ListArchivesNewestFirst", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("old", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))))
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("new", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

		list, err := s.ListArchives(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "old", list[1].ID)
		assert.Equal(t, 4, list[0].MemberCount)
		assert.Equal(t, 3, list[0].RelationCount)
	})

	t.Run("DeleteArchive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("b", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

		require.NoError(t, s.DeleteArchive(ctx, "a"))
		got, err := s.GetArchive(ctx, "a")
		require.NoError(t, err)
		assert.Nil(t, got)

		other, err := s.GetArchive(ctx, "b")
		require.NoError(t, err)
		require.NotNil(t, other, "shared member ids across archives must not collide")
		assert.Len(t, other.Members, 4)

		assert.ErrorIs(t, s.DeleteArchive(ctx, "a"), ErrNotFound)
	})

	t.Run("DeleteMemberCascades", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

		require.NoError(t, s.DeleteMember(ctx, "a", "me"))
		got, err := s.GetArchive(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Members, 3)
		require.Len(t, got.Relations, 1)
		assert.Equal(t, "r1", got.Relations[0].ID)
		assert.Empty(t, got.RootMemberID)

		assert.ErrorIs(t, s.DeleteMember(ctx, "a", "me"), ErrNotFound)
	})

	t.Run("Stats", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
		require.NoError(t, s.SaveArchive(ctx, fixtureArchive("b", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &StoreStats{ArchiveCount: 2, MemberCount: 8, RelationCount: 6}, st)
	})

	t.Run("SaveRequiresID", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.SaveArchive(context.Background(), &archive.Archive{}))
	})
}
