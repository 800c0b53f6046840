package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
	"github.com/aldermoor/storefront/pkg/pagination"
)

func newProductTestFixture(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func productColumns() []string {
	return []string{
		"id", "name", "description", "thumbnail", "price",
		"affiliate_link", "categories", "tags", "created_at", "updated_at",
	}
}

func TestProductRepository_Create(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()
	p := &domain.Product{
		ID:         "p-1",
		Name:       "Keyboard",
		Price:      129.99,
		Categories: []string{"peripherals"},
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO products").
		WithArgs("p-1", "Keyboard", "", "", 129.99, "", []string{"peripherals"}, []string{}, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM products WHERE id =").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(productColumns()))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE products").
		WithArgs("Keyboard", "", "", 129.99, "", []string{"peripherals"}, []string{}, pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Product{
		ID:         "ghost",
		Name:       "Keyboard",
		Price:      129.99,
		Categories: []string{"peripherals"},
		Tags:       []string{},
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_FilterBindsInOrder(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := pgxmock.NewRows(append(productColumns(), "total_count")).
		AddRow("p-1", "Keyboard", "", "", 129.99, "", []string{"peripherals"}, []string{}, now, now, 42)

	minPrice, maxPrice := 10.0, 200.0
	mock.ExpectQuery("SELECT .+ count\\(\\*\\) OVER\\(\\) AS total_count\\s+FROM products\\s+WHERE").
		WithArgs("%key%", "peripherals", minPrice, maxPrice, 20, 20).
		WillReturnRows(rows)

	products, total, err := repo.List(context.Background(),
		repository.ProductFilter{Search: "key", Category: "peripherals", MinPrice: &minPrice, MaxPrice: &maxPrice},
		pagination.Params{Page: 2, PerPage: 20, Offset: 20})

	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_EmptyPageIsNotNil(t *testing.T) {
	repo, mock := newProductTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(append(productColumns(), "total_count")))

	products, total, err := repo.List(context.Background(),
		repository.ProductFilter{}, pagination.Params{Page: 1, PerPage: 20})

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
