package collections

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/membership"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, CollectionRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewCollectionRepository(db)
}

var collectionRowColumns = []string{
	"id", "name", "slug", "description", "seller", "type", "mode", "visibility", "status",
	"conditions", "products_count", "updated_at", "updated_by",
}

func TestRepoCreate_ManualWritesProductOrder(t *testing.T) {
	mock, repo := setupMockDB(t)
	c := &Collection{
		ID: "c2", Name: "Зимняя распродажа", Slug: "zimnyaya-rasprodazha", Seller: noSeller,
		Type: TypeGlobal, Mode: ModeManual, Visibility: VisibilityPublic, Status: StatusActive,
		ProductIDs: []string{"p3", "p1"}, ProductsCount: 2, UpdatedBy: "Иван К.",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs("c2", c.Name, c.Slug, "", noSeller, TypeGlobal, ModeManual, VisibilityPublic, StatusActive,
			nil, 2, "Иван К.").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO collection_products \(collection_id, product_id, position\) VALUES \(\?, \?, \?\), \(\?, \?, \?\)`).
		WithArgs("c2", "p3", 0, "c2", "p1", 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreate_ByTagsIndexesTags(t *testing.T) {
	mock, repo := setupMockDB(t)
	c := &Collection{
		ID: "c1", Name: "Лучшее", Slug: "luchshee", Mode: ModeByTags,
		Conditions: &membership.TagConditions{
			Groups: []membership.ConditionGroup{
				{Type: membership.GroupMust, TagIDs: []string{"1", "3"}},
				{Type: membership.GroupAny, TagIDs: []string{"3", "5"}},
			},
			Logic: membership.LogicAnd,
			Sort:  membership.SortPopularity,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).
		WithArgs("c1", "Лучшее", "luchshee", "", "", "", ModeByTags, "", "",
			sqlmock.AnyArg(), 0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT IGNORE INTO collection_tags .* WHERE t\.id IN \(\?, \?, \?\)`).
		WithArgs("c1", "1", "3", "5").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreate_DuplicateSlug(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO collections`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'hity' for key 'uq_collections_slug'"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Collection{ID: "c9", Slug: "hity"})
	assert.True(t, apperror.Is(err, http.StatusConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdate_NotFoundRollsBack(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE collections SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &Collection{ID: "missing"})
	assert.True(t, apperror.Is(err, http.StatusNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoFindByID(t *testing.T) {
	mock, repo := setupMockDB(t)
	updated := time.Date(2026, 2, 5, 16, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM collections c WHERE c\.id = \?`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(collectionRowColumns).AddRow(
			"c1", "Лучшее за неделю", "luchshee-za-nedelyu", "", noSeller, "global", "by_tags", "public", "active",
			[]byte(`{"groups":[{"type":"MUST","tagIds":["3"]}],"logic":"AND","priceMin":"","priceMax":"5000","sort":"price_asc"}`),
			48, updated, "Анна М.",
		))
	mock.ExpectQuery(`SELECT product_id FROM collection_products`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	c, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, c.Conditions)
	assert.Equal(t, membership.SortPriceAsc, c.Conditions.Sort)
	assert.Equal(t, "5000", c.Conditions.PriceMax)
	assert.Equal(t, []string{"3"}, c.Conditions.Groups[0].TagIDs)
	assert.Equal(t, 48, c.ProductsCount)
	assert.NotNil(t, c.ProductIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoList_Filters(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectQuery(`WHERE c\.name LIKE \? ESCAPE '\\\\' AND c\.type = \? ORDER BY c\.updated_at DESC`).
		WithArgs("%хит%", "seller").
		WillReturnRows(sqlmock.NewRows(collectionRowColumns).AddRow(
			"c5", "TechStore: хиты", "techstore-hity", "", "TechStore", "seller", "manual", "public", "active",
			nil, 19, time.Now(), "TechStore",
		))

	collections, err := repo.List(context.Background(), ListFilter{Search: "хит", Type: "seller"})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Nil(t, collections[0].Conditions)
	assert.Nil(t, collections[0].ProductIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoSetProductsCount(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`UPDATE collections SET products_count = \?, updated_at = updated_at`).
		WithArgs(12, "c1", 12).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.SetProductsCount(context.Background(), "c1", 12)
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}
