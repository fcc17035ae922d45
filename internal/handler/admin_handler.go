package handler

import (
	"errors"
	"net/http"

	"eventhub-backend/internal/dto"
	"eventhub-backend/internal/models"
	"eventhub-backend/internal/repository"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AdminHandler covers the user and category catalogs. These are thin CRUD
// surfaces, so the handler talks to the repositories directly.
type AdminHandler struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
}

func NewAdminHandler(userRepo repository.UserRepository, categoryRepo repository.CategoryRepository) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, categoryRepo: categoryRepo}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	adminUsers := e.Group("/admin/users")
	adminUsers.POST("", h.CreateUser)
	adminUsers.GET("", h.ListUsers)
	adminUsers.DELETE("/:userId", h.DeleteUser)

	adminCategories := e.Group("/admin/categories")
	adminCategories.POST("", h.CreateCategory)
	adminCategories.PATCH("/:catId", h.UpdateCategory)
	adminCategories.DELETE("/:catId", h.DeleteCategory)

	e.GET("/categories", h.ListCategories)
	e.GET("/categories/:catId", h.GetCategory)
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req dto.NewUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := &models.User{Name: req.Name, Email: req.Email}
	if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ids, err := queryUintList(c, "ids")
	if err != nil {
		return err
	}
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 10)
	if err != nil {
		return err
	}

	users, err := h.userRepo.FindAll(c.Request().Context(), ids, from, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	affected, err := h.userRepo.Delete(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	if affected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req dto.NewCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category := &models.Category{Name: req.Name}
	if err := h.categoryRepo.Create(c.Request().Context(), category); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	catID, err := pathID(c, "catId")
	if err != nil {
		return err
	}

	var req dto.NewCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.categoryRepo.FindByID(c.Request().Context(), catID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return httpError(err)
	}

	category.Name = req.Name
	if err := h.categoryRepo.Save(c.Request().Context(), category); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	catID, err := pathID(c, "catId")
	if err != nil {
		return err
	}

	affected, err := h.categoryRepo.Delete(c.Request().Context(), catID)
	if err != nil {
		return httpError(err)
	}
	if affected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListCategories(c echo.Context) error {
	from, err := queryInt(c, "from", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", 10)
	if err != nil {
		return err
	}

	categories, err := h.categoryRepo.FindAll(c.Request().Context(), from, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *AdminHandler) GetCategory(c echo.Context) error {
	catID, err := pathID(c, "catId")
	if err != nil {
		return err
	}

	category, err := h.categoryRepo.FindByID(c.Request().Context(), catID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, category)
}
