package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

func newTestProductService(products *mockProductRepository, uploader *mockUploader) *ProductService {
	return NewProductService(products, uploader, newTestLogger())
}

func TestCreateProduct_Success(t *testing.T) {
	products := new(mockProductRepository)
	svc := newTestProductService(products, new(mockUploader))
	ctx := context.Background()

	products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProduct(ctx, domain.CreateProductInput{
		Name:     "Walnut Desk",
		Price:    749.99,
		Category: "furniture",
		Stock:    12,
		Images:   []string{"https://cdn.example.com/desk.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Walnut Desk", product.Name)
	assert.Equal(t, 12, product.Stock)
	assert.Zero(t, product.AverageRating)
	assert.Zero(t, product.TotalReviews)
}

func TestCreateProduct_ValidationFailure(t *testing.T) {
	products := new(mockProductRepository)
	svc := newTestProductService(products, new(mockUploader))

	_, err := svc.CreateProduct(context.Background(), domain.CreateProductInput{
		Name:  "X",
		Price: -1,
	})
	assert.Error(t, err)
	products.AssertNotCalled(t, "Create")
}

func TestCreateProductWithImages_CountBounds(t *testing.T) {
	products := new(mockProductRepository)
	uploader := new(mockUploader)
	svc := newTestProductService(products, uploader)
	ctx := context.Background()

	input := domain.CreateProductInput{Name: "Mug", Price: 9.99, Category: "kitchen"}

	_, err := svc.CreateProductWithImages(ctx, input, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	four := make([]ImageFile, 4)
	for i := range four {
		four[i] = ImageFile{Filename: "img.jpg", Content: strings.NewReader("x")}
	}
	_, err = svc.CreateProductWithImages(ctx, input, four)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	uploader.AssertNotCalled(t, "Upload")
}

func TestCreateProductWithImages_UploadsAndCreates(t *testing.T) {
	products := new(mockProductRepository)
	uploader := new(mockUploader)
	svc := newTestProductService(products, uploader)
	ctx := context.Background()

	uploader.On("Upload", ctx, "a.jpg", mock.Anything).Return("https://cdn.example.com/a.jpg", nil)
	uploader.On("Upload", ctx, "b.jpg", mock.Anything).Return("https://cdn.example.com/b.jpg", nil)
	products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProductWithImages(ctx,
		domain.CreateProductInput{Name: "Mug", Price: 9.99, Category: "kitchen"},
		[]ImageFile{
			{Filename: "a.jpg", Content: strings.NewReader("a")},
			{Filename: "b.jpg", Content: strings.NewReader("b")},
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, product.Images)
}

func TestCreateProductWithImages_UploadFailure(t *testing.T) {
	products := new(mockProductRepository)
	uploader := new(mockUploader)
	svc := newTestProductService(products, uploader)
	ctx := context.Background()

	uploader.On("Upload", ctx, "a.jpg", mock.Anything).Return("", assert.AnError)

	_, err := svc.CreateProductWithImages(ctx,
		domain.CreateProductInput{Name: "Mug", Price: 9.99, Category: "kitchen"},
		[]ImageFile{{Filename: "a.jpg", Content: strings.NewReader("a")}})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	products.AssertNotCalled(t, "Create")
}

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	products := new(mockProductRepository)
	svc := newTestProductService(products, new(mockUploader))
	ctx := context.Background()

	existing := &domain.Product{ID: uuid.New(), Name: "Mug", Price: 9.99, Category: "kitchen", Stock: 5}
	products.On("GetByID", ctx, existing.ID).Return(existing, nil)
	products.On("Update", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	newPrice := 12.50
	updated, err := svc.UpdateProduct(ctx, existing.ID, domain.UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 12.50, updated.Price)
	assert.Equal(t, "Mug", updated.Name)
	assert.Equal(t, 5, updated.Stock)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	products := new(mockProductRepository)
	svc := newTestProductService(products, new(mockUploader))
	ctx := context.Background()
	id := uuid.New()

	products.On("Delete", ctx, id).Return(apperrors.NotFound("product", id.String()))

	err := svc.DeleteProduct(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
