package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"junomarket/internal/app/shop/cache"
	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/repository"
	"junomarket/internal/app/shop/repository/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestProductService(t *testing.T) (*ProductService, *mocks.MockProductRepository, *mocks.MockImageStore, *mocks.MockMessagePublisher, *miniredis.Miniredis) {
	t.Helper()

	productRepo := new(mocks.MockProductRepository)
	imageStore := new(mocks.MockImageStore)
	producer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	cacheClient, mr := newTestCache(t)
	invalidator := cache.NewInvalidator(cacheClient)

	svc := NewProductService(productRepo, cacheClient, invalidator, imageStore, producer, time.Minute, 30*time.Second)
	return svc, productRepo, imageStore, producer, mr
}

func testImages(names ...string) []ImageUpload {
	images := make([]ImageUpload, 0, len(names))
	for _, name := range names {
		images = append(images, ImageUpload{Filename: name, Content: strings.NewReader("img")})
	}
	return images
}

func testCreateProductRequest() *entity.CreateProductRequest {
	return &entity.CreateProductRequest{
		Name:        "Widget",
		Description: "A very useful widget",
		Price:       9.99,
		Stock:       10,
		Category:    "tools",
	}
}

// ===================== CreateProduct Tests =====================

func TestCreateProduct_Success(t *testing.T) {
	svc, productRepo, imageStore, producer, _ := newTestProductService(t)

	ctx := context.Background()
	req := testCreateProductRequest()

	imageStore.On("Upload", ctx, "a.jpg", mock.Anything).Return(&entity.Photo{URL: "http://img/a", PublicID: "a"}, nil)
	imageStore.On("Upload", ctx, "b.jpg", mock.Anything).Return(&entity.Photo{URL: "http://img/b", PublicID: "b"}, nil)
	productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil).Run(func(args mock.Arguments) {
		product := args.Get(1).(*entity.Product)
		product.ID = primitive.NewObjectID()
	})
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	product, err := svc.CreateProduct(ctx, req, testImages("a.jpg", "b.jpg"))

	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)
	require.Len(t, product.Photos, 2)
	assert.Equal(t, "http://img/a", product.Photos[0].URL)
	productRepo.AssertExpectations(t)
	imageStore.AssertExpectations(t)
}

func TestCreateProduct_NoImages(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	_, err := svc.CreateProduct(context.Background(), testCreateProductRequest(), nil)

	assert.ErrorIs(t, err, ErrImageCount)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	svc, _, _, _, _ := newTestProductService(t)

	images := testImages("1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg")
	_, err := svc.CreateProduct(context.Background(), testCreateProductRequest(), images)

	assert.ErrorIs(t, err, ErrImageCount)
}

func TestCreateProduct_RepoErrorDestroysUploadedImages(t *testing.T) {
	svc, productRepo, imageStore, _, _ := newTestProductService(t)

	ctx := context.Background()

	imageStore.On("Upload", ctx, "a.jpg", mock.Anything).Return(&entity.Photo{URL: "http://img/a", PublicID: "a"}, nil)
	productRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))
	imageStore.On("Destroy", ctx, "a").Return(nil)

	_, err := svc.CreateProduct(ctx, testCreateProductRequest(), testImages("a.jpg"))

	assert.Error(t, err)
	imageStore.AssertCalled(t, "Destroy", ctx, "a")
}

func TestCreateProduct_UploadErrorCleansUpPartialUploads(t *testing.T) {
	svc, productRepo, imageStore, _, _ := newTestProductService(t)

	ctx := context.Background()

	imageStore.On("Upload", ctx, "a.jpg", mock.Anything).Return(&entity.Photo{URL: "http://img/a", PublicID: "a"}, nil)
	imageStore.On("Upload", ctx, "b.jpg", mock.Anything).Return(nil, errors.New("storage error"))
	imageStore.On("Destroy", ctx, "a").Return(nil)

	_, err := svc.CreateProduct(ctx, testCreateProductRequest(), testImages("a.jpg", "b.jpg"))

	assert.Error(t, err)
	imageStore.AssertCalled(t, "Destroy", ctx, "a")
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_InvalidatesListCaches(t *testing.T) {
	svc, productRepo, imageStore, producer, mr := newTestProductService(t)

	ctx := context.Background()

	require.NoError(t, mr.Set(cache.KeyAllProducts, "stale"))
	require.NoError(t, mr.Set(cache.KeyLatestProducts, "stale"))
	require.NoError(t, mr.Set(cache.KeyCategories, "stale"))
	require.NoError(t, mr.Set(cache.KeyAdminStats, "stale"))

	// Фильтрованные списки не отслеживаются и доживают свой TTL
	listKey := cache.ProductsKey("", "", "tools", 0, 1)
	require.NoError(t, mr.Set(listKey, "stale"))

	imageStore.On("Upload", ctx, mock.Anything, mock.Anything).Return(&entity.Photo{URL: "u", PublicID: "p"}, nil)
	productRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Product).ID = primitive.NewObjectID()
	})
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateProduct(ctx, testCreateProductRequest(), testImages("a.jpg"))
	require.NoError(t, err)

	assert.False(t, mr.Exists(cache.KeyAllProducts))
	assert.False(t, mr.Exists(cache.KeyLatestProducts))
	assert.False(t, mr.Exists(cache.KeyCategories))
	assert.False(t, mr.Exists(cache.KeyAdminStats))
	assert.True(t, mr.Exists(listKey))
}

// ===================== UpdateProduct Tests =====================

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	svc, productRepo, _, producer, _ := newTestProductService(t)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	existing := &entity.Product{
		ID: productID, Name: "Widget", Description: "A very useful widget",
		Price: 9.99, Stock: 10, Category: "tools",
	}

	productRepo.On("GetByID", ctx, productID.Hex()).Return(existing, nil)
	productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	// Передана только цена - остальные поля не меняются
	updated, err := svc.UpdateProduct(ctx, productID.Hex(), &entity.UpdateProductRequest{Price: 19.99}, nil)

	require.NoError(t, err)
	assert.Equal(t, 19.99, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, "tools", updated.Category)
}

func TestUpdateProduct_ReplacesImages(t *testing.T) {
	svc, productRepo, imageStore, producer, _ := newTestProductService(t)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	existing := &entity.Product{
		ID: productID, Name: "Widget", Price: 9.99,
		Photos: []entity.Photo{{URL: "http://img/old", PublicID: "old"}},
	}

	productRepo.On("GetByID", ctx, productID.Hex()).Return(existing, nil)
	imageStore.On("Upload", ctx, "new.jpg", mock.Anything).Return(&entity.Photo{URL: "http://img/new", PublicID: "new"}, nil)
	imageStore.On("Destroy", ctx, "old").Return(nil)
	productRepo.On("Update", ctx, mock.Anything).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.UpdateProduct(ctx, productID.Hex(), &entity.UpdateProductRequest{}, testImages("new.jpg"))

	require.NoError(t, err)
	require.Len(t, updated.Photos, 1)
	assert.Equal(t, "http://img/new", updated.Photos[0].URL)
	imageStore.AssertCalled(t, "Destroy", ctx, "old")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	ctx := context.Background()
	productRepo.On("GetByID", ctx, "missing").Return(nil, repository.ErrProductNotFound)

	_, err := svc.UpdateProduct(ctx, "missing", &entity.UpdateProductRequest{Name: "X"}, nil)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ===================== DeleteProduct Tests =====================

func TestDeleteProduct_DestroysImages(t *testing.T) {
	svc, productRepo, imageStore, producer, _ := newTestProductService(t)

	ctx := context.Background()
	productID := primitive.NewObjectID()
	existing := &entity.Product{
		ID:     productID,
		Photos: []entity.Photo{{URL: "u1", PublicID: "id1"}, {URL: "u2", PublicID: "id2"}},
	}

	productRepo.On("GetByID", ctx, productID.Hex()).Return(existing, nil)
	productRepo.On("Delete", ctx, productID.Hex()).Return(nil)
	imageStore.On("Destroy", ctx, "id1").Return(nil)
	imageStore.On("Destroy", ctx, "id2").Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteProduct(ctx, productID.Hex())

	require.NoError(t, err)
	imageStore.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	ctx := context.Background()
	productRepo.On("GetByID", ctx, "missing").Return(nil, repository.ErrProductNotFound)

	err := svc.DeleteProduct(ctx, "missing")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ===================== Read Path Tests =====================

func TestSearchProducts_CachesPerFilterCombination(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	ctx := context.Background()
	toolsReq := &entity.SearchProductsRequest{Category: "tools", Page: 1}
	booksReq := &entity.SearchProductsRequest{Category: "books", Page: 1}

	productRepo.On("Search", ctx, toolsReq, productsPageSize).Return([]entity.Product{{Name: "Hammer"}}, nil).Once()
	productRepo.On("Search", ctx, booksReq, productsPageSize).Return([]entity.Product{{Name: "Novel"}}, nil).Once()

	tools, err := svc.SearchProducts(ctx, toolsReq)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", tools[0].Name)

	books, err := svc.SearchProducts(ctx, booksReq)
	require.NoError(t, err)
	assert.Equal(t, "Novel", books[0].Name)

	// Повторный запрос с теми же фильтрами идет из кеша
	toolsAgain, err := svc.SearchProducts(ctx, toolsReq)
	require.NoError(t, err)
	assert.Equal(t, tools, toolsAgain)

	productRepo.AssertNumberOfCalls(t, "Search", 2)
}

func TestGetProduct_CachesResult(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	ctx := context.Background()
	productID := primitive.NewObjectID()

	productRepo.On("GetByID", ctx, productID.Hex()).Return(&entity.Product{ID: productID, Name: "Widget"}, nil).Once()

	first, err := svc.GetProduct(ctx, productID.Hex())
	require.NoError(t, err)

	second, err := svc.GetProduct(ctx, productID.Hex())
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	productRepo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestGetCategories_CachesResult(t *testing.T) {
	svc, productRepo, _, _, _ := newTestProductService(t)

	ctx := context.Background()
	productRepo.On("GetCategories", ctx).Return([]string{"books", "tools"}, nil).Once()

	first, err := svc.GetCategories(ctx)
	require.NoError(t, err)

	second, err := svc.GetCategories(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	productRepo.AssertNumberOfCalls(t, "GetCategories", 1)
}
