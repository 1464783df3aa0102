package berita

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

type memRepo struct {
	articles map[int64]Berita
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{articles: map[int64]Berita{}, nextID: 1}
}

func (r *memRepo) List(ctx context.Context, p shared.Pagination) ([]Berita, int64, error) {
	out := make([]Berita, 0, len(r.articles))
	for _, b := range r.articles {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) Get(ctx context.Context, id int64) (Berita, error) {
	b, ok := r.articles[id]
	if !ok {
		return Berita{}, shared.ErrNotFound
	}
	return b, nil
}

func (r *memRepo) Create(ctx context.Context, b Berita) (Berita, error) {
	for _, existing := range r.articles {
		if existing.Slug == b.Slug {
			return Berita{}, shared.ErrConflict
		}
	}
	b.ID = r.nextID
	r.nextID++
	r.articles[b.ID] = b
	return b, nil
}

func (r *memRepo) Update(ctx context.Context, b Berita) (Berita, error) {
	existing, ok := r.articles[b.ID]
	if !ok {
		return Berita{}, shared.ErrNotFound
	}
	existing.Title = b.Title
	existing.Slug = b.Slug
	existing.Body = b.Body
	r.articles[b.ID] = existing
	return existing, nil
}

func (r *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.articles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.articles, id)
	return nil
}

func (r *memRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	b, ok := r.articles[id]
	if !ok {
		return shared.ErrNotFound
	}
	b.Published = published
	r.articles[id] = b
	return nil
}

var _ Repository = (*memRepo)(nil)

func TestCreateGeneratesSlug(t *testing.T) {
	service := NewService(newMemRepo(), nil, nil)

	created, err := service.Create(context.Background(), 7, Input{
		Title: "Reuni Akbar Teladan 2026!",
		Body:  "Pendaftaran reuni akbar sudah dibuka.",
	})
	require.NoError(t, err)

	assert.Equal(t, "reuni-akbar-teladan-2026", created.Slug)
	assert.Equal(t, int64(7), created.AuthorID)
	assert.False(t, created.Published)
}

func TestCreateRejectsShortTitle(t *testing.T) {
	service := NewService(newMemRepo(), nil, nil)

	_, err := service.Create(context.Background(), 7, Input{Title: "ab", Body: "Isi berita cukup panjang."})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsShortBody(t *testing.T) {
	service := NewService(newMemRepo(), nil, nil)

	_, err := service.Create(context.Background(), 7, Input{Title: "Judul Berita", Body: "pendek"})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRewritesSlug(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, nil, nil)
	created, err := service.Create(context.Background(), 7, Input{
		Title: "Judul Lama",
		Body:  "Isi berita cukup panjang.",
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), 7, created.ID, Input{
		Title: "Judul Baru Sekali",
		Body:  "Isi berita yang sudah direvisi.",
	})
	require.NoError(t, err)

	assert.Equal(t, "judul-baru-sekali", updated.Slug)
}

func TestPublishRoundTrip(t *testing.T) {
	repo := newMemRepo()
	service := NewService(repo, nil, nil)
	created, err := service.Create(context.Background(), 7, Input{
		Title: "Judul Berita",
		Body:  "Isi berita cukup panjang.",
	})
	require.NoError(t, err)

	require.NoError(t, service.Publish(context.Background(), 7, created.ID))
	got, err := service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.Published)

	require.NoError(t, service.Unpublish(context.Background(), 7, created.ID))
	got, err = service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.Published)
}

func TestDeleteMissingArticle(t *testing.T) {
	service := NewService(newMemRepo(), nil, nil)

	err := service.Delete(context.Background(), 7, 999)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Reuni Akbar 2026":     "reuni-akbar-2026",
		"  Halo,  Dunia!  ":    "halo-dunia",
		"Berita---Terbaru":     "berita-terbaru",
		"SATU Teladan (Resmi)": "satu-teladan-resmi",
		"angka 123 tetap utuh": "angka-123-tetap-utuh",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugify(input), "slugify(%q)", input)
	}
}
