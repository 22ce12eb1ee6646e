package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"stockroom/internal/logger"
	"stockroom/internal/middleware"
	"stockroom/internal/models"
	"stockroom/internal/services"
	"stockroom/internal/storage"
	"stockroom/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20

type ProductHandler struct {
	productService *services.ProductService
	store          storage.Storage
}

func NewProductHandler(productService *services.ProductService, store storage.Storage) *ProductHandler {
	return &ProductHandler{productService: productService, store: store}
}

type createProductRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// ingestImage saves the uploaded "image" part if one was sent with an
// accepted type. Types outside {png, jpg, jpeg} are silently dropped: the
// product simply gets no image. A true storage failure is returned and
// aborts the surrounding create/update.
func (h *ProductHandler) ingestImage(r *http.Request) (*models.FileInfo, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	if !storage.AllowedImage(mime) {
		logger.WithCtx(r.Context()).Warn("unsupported image type dropped",
			zap.String("file", header.Filename), zap.String("mime", mime))
		return nil, nil
	}

	return h.store.Save(r.Context(), storage.Upload{
		Name: header.Filename,
		MIME: mime,
		Size: header.Size,
		Body: file,
	})
}

// Create godoc
// @Summary Create a product owned by the authenticated user
// @Tags products
// @Accept mpfd
// @Accept json
// @Produce json
// @Success 201 {object} models.Product
// @Failure 400 {string} string "Validation error"
// @Failure 500 {string} string "Image upload failed"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	var input services.CreateProductInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			log.Warn("invalid multipart form in Create", zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "invalid form data")
			return
		}
		input = services.CreateProductInput{
			Name:        r.FormValue("name"),
			SKU:         r.FormValue("sku"),
			Category:    r.FormValue("category"),
			Quantity:    r.FormValue("quantity"),
			Price:       r.FormValue("price"),
			Description: r.FormValue("description"),
		}
		image, err := h.ingestImage(r)
		if err != nil {
			log.Error("image upload failed", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "image could not be uploaded")
			return
		}
		input.Image = image
	} else {
		var req createProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("invalid JSON in Create", zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		input = services.CreateProductInput{
			Name:        req.Name,
			SKU:         req.SKU,
			Category:    req.Category,
			Quantity:    req.Quantity,
			Price:       req.Price,
			Description: req.Description,
		}
	}

	product, err := h.productService.Create(r.Context(), user, input)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	helpers.JSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

// List godoc
// @Summary List the authenticated user's products, newest first
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	products, err := h.productService.List(r.Context(), user)
	if err != nil {
		log.Error("list products failed", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "could not list products")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid product id: "+idStr)
		return 0, false
	}
	return id, true
}

// Get godoc
// @Summary Get one of the authenticated user's products
// @Tags products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} models.Product
// @Failure 403 {string} string "Not the owner"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// Update godoc
// @Summary Partially update a product
// @Tags products
// @Accept mpfd
// @Accept json
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} models.Product
// @Failure 403 {string} string "Not the owner"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [patch]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	var (
		input models.UpdateProductRequest
		image *models.FileInfo
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			log.Warn("invalid multipart form in Update", zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "invalid form data")
			return
		}
		form := r.MultipartForm
		input = models.UpdateProductRequest{
			Name:        formValue(form, "name"),
			SKU:         formValue(form, "sku"),
			Category:    formValue(form, "category"),
			Quantity:    formValue(form, "quantity"),
			Price:       formValue(form, "price"),
			Description: formValue(form, "description"),
		}
		var err error
		image, err = h.ingestImage(r)
		if err != nil {
			log.Error("image upload failed", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "image could not be uploaded")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			log.Warn("invalid JSON in Update", zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	product, err := h.productService.Update(r.Context(), user, id, &input, image)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// Delete godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path int true "Product id"
// @Success 200 {object} map[string]string
// @Failure 403 {string} string "Not the owner"
// @Failure 404 {string} string "Product not found"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, log, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// formValue reports presence: nil when the field was absent from the form.
func formValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
