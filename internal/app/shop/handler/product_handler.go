package handler

import (
	"mime/multipart"
	"net/http"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProductHandler обрабатывает HTTP-запросы каталога товаров
type ProductHandler struct {
	productService service.ProductServiceInterface
	validator      *validator.Validate
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// SearchProducts обрабатывает GET /products
// Поддерживает search, sort, category, price и page
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	var req entity.SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	products, err := h.productService.SearchProducts(c.Request.Context(), &req)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка поиска товаров")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Success:  true,
		Products: products,
		Total:    len(products),
	})
}

// GetLatestProducts обрабатывает GET /products/latest
func (h *ProductHandler) GetLatestProducts(c *gin.Context) {
	products, err := h.productService.GetLatestProducts(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка получения последних товаров")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Success:  true,
		Products: products,
		Total:    len(products),
	})
}

// GetCategories обрабатывает GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка получения категорий")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Success:    true,
		Categories: categories,
	})
}

// GetAdminProducts обрабатывает GET /products/admin
// Возвращает полный каталог без пагинации, только для админа
func (h *ProductHandler) GetAdminProducts(c *gin.Context) {
	products, err := h.productService.GetAllProducts(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка получения полного каталога")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Success:  true,
		Products: products,
		Total:    len(products),
	})
}

// GetProduct обрабатывает GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Success: true,
		Product: product,
	})
}

// CreateProduct обрабатывает POST /products
// Принимает multipart форму с полями товара и 1-5 изображениями
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	images, closeImages, err := h.openFormImages(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}
	defer closeImages()

	product, err := h.productService.CreateProduct(c.Request.Context(), &req, images)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания товара")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.ProductResponse{
		Success: true,
		Product: product,
	})
}

// UpdateProduct обрабатывает PUT /products/:id
// Новые изображения опциональны, при их наличии старые заменяются
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var req entity.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	images, closeImages, err := h.openFormImages(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read uploaded images")
		return
	}
	defer closeImages()

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req, images)
	if err != nil {
		logger.Error().Err(err).Str("product_id", id).Msg("Ошибка обновления товара")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductResponse{
		Success: true,
		Product: product,
	})
}

// DeleteProduct обрабатывает DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		logger.Error().Err(err).Str("product_id", id).Msg("Ошибка удаления товара")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// openFormImages открывает файлы photos из multipart формы
// Возвращает функцию закрытия всех открытых файлов
func (h *ProductHandler) openFormImages(c *gin.Context) ([]service.ImageUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Форма без файлов допустима для обновления
		return nil, func() {}, nil
	}

	fileHeaders := form.File["photos"]
	if len(fileHeaders) == 0 {
		return nil, func() {}, nil
	}

	opened := make([]multipart.File, 0, len(fileHeaders))
	uploads := make([]service.ImageUpload, 0, len(fileHeaders))

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, file)
		uploads = append(uploads, service.ImageUpload{
			Filename: header.Filename,
			Content:  file,
		})
	}

	return uploads, closeAll, nil
}
