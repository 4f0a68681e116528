package handlers

import (
	"errors"
	"net/http"

	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/store/sqlstore"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func GetCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := d.Catalog.Categories(r.Context())
		if err != nil {
			internalError(w, d.Logger, "Error fetching categories", err)
			return
		}
		respond.JSON(w, http.StatusOK, categories)
	}
}

func GetCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "Invalid ID format")
			return
		}

		category, err := d.Catalog.Category(r.Context(), id)
		if err != nil {
			if errors.Is(err, sqlstore.ErrCategoryNotFound) {
				respond.Error(w, http.StatusNotFound, "Category not found")
				return
			}
			internalError(w, d.Logger, "Error fetching category", err)
			return
		}
		respond.JSON(w, http.StatusOK, category)
	}
}

func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in categoryRequest
		if err := decodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid input format")
			return
		}

		category, err := d.Catalog.CreateCategory(r.Context(), in.Name, in.Order)
		if err != nil {
			if msg, ok := validationMessage(err); ok {
				respond.Error(w, http.StatusBadRequest, msg)
				return
			}
			internalError(w, d.Logger, "Error creating category", err)
			return
		}
		respond.JSON(w, http.StatusCreated, category)
	}
}

func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "Invalid ID format")
			return
		}

		var in categoryRequest
		if err := decodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, "Invalid input format")
			return
		}

		category, err := d.Catalog.UpdateCategory(r.Context(), id, in.Name, in.Order)
		if err != nil {
			if msg, ok := validationMessage(err); ok {
				respond.Error(w, http.StatusBadRequest, msg)
				return
			}
			if errors.Is(err, sqlstore.ErrCategoryNotFound) {
				respond.Error(w, http.StatusNotFound, "Category not found")
				return
			}
			internalError(w, d.Logger, "Error updating category", err)
			return
		}
		respond.JSON(w, http.StatusOK, category)
	}
}

func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "Invalid ID format")
			return
		}

		if err := d.Catalog.DeleteCategory(r.Context(), id); err != nil {
			if errors.Is(err, sqlstore.ErrCategoryNotFound) {
				respond.Error(w, http.StatusNotFound, "Category not found")
				return
			}
			internalError(w, d.Logger, "Error deleting category", err)
			return
		}
		respond.OK(w, "Category deleted successfully")
	}
}
