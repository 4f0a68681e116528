package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/httpserver/deps"
	"github.com/sekawan-grup/raya/internal/httpserver/respond"
	"github.com/sekawan-grup/raya/internal/store/sqlstore"
)

type linkRequest struct {
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	ImageURL string          `json:"image_url"`
	Price    decimal.Decimal `json:"price"`
	PriceStr string          `json:"price_str"`
	Order    int             `json:"order"`
	IsActive *bool           `json:"is_active"` // omitted means active
}

func (in linkRequest) toLink() domain.Link {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return domain.Link{
		Title:    in.Title,
		URL:      in.URL,
		ImageURL: in.ImageURL,
		Price:    in.Price,
		PriceStr: in.PriceStr,
		Order:    in.Order,
		IsActive: active,
	}
}

func GetAllLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := d.Catalog.AllLinks(r.Context())
		if err != nil {
			internalError(w, d.Logger, "Error fetching links", err)
			return
		}
		respond.JSON(w, http.StatusOK, links)
	}
}

func GetLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := d.Catalog.Links(r.Context())
		if err != nil {
			internalError(w, d.Logger, "Error fetching links", err)
			return
		}
		respond.JSON(w, http.StatusOK, links)
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uintParam(r, "id")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "Invalid ID format")
			return
		}

		link, err := d.Catalog.Link(r.Context(), id)
		if err != nil {
			if errors.Is(err, sqlstore.ErrLinkNotFound) {
				respond.Error(w, http.StatusNotFound, "Link not found")
				return
			}
			internalError(w, d.Logger, "Error fetching link", err)
			return
		}
		respond.JSON(w, http.StatusOK, link)
	}
}

func GetCategoryLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, ok := uintParam(r, "categoryID")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "ID kategori tidak valid")
			return
		}

		links, err := d.Catalog.CategoryLinks(r.Context(), categoryID)
		if err != nil {
			if errors.Is(err, sqlstore.ErrCategoryNotFound) {
				respond.Error(w, http.StatusNotFound, "Kategori tidak ditemukan")
				return
			}
			internalError(w, d.Logger, "Error mengambil link", err)
			return
		}
		respond.JSON(w, http.StatusOK, links)
	}
}

func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, ok := uintParam(r, "categoryID")
		if !ok {
			respond.Error(w, http.StatusBadRequest, "ID kategori tidak valid")
			return
		}

		var in linkRequest
		if err := decodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, "Format input tidak valid")
			return
		}

		link, err := d.Catalog.CreateLink(r.Context(), categoryID, in.toLink())
		if err != nil {
			if msg, ok := validationMessage(err); ok {
				respond.Error(w, http.StatusBadRequest, msg)
				return
			}
			if errors.Is(err, sqlstore.ErrCategoryNotFound) {
				respond.Error(w, http.StatusNotFound, "Kategori tidak ditemukan")
				return
			}
			internalError(w, d.Logger, "Error membuat link", err)
			return
		}
		respond.JSON(w, http.StatusCreated, link)
	}
}

// linkParams parses {categoryID} and {linkID}, writing the 400 itself.
func linkParams(w http.ResponseWriter, r *http.Request) (categoryID, linkID uint, ok bool) {
	if categoryID, ok = uintParam(r, "categoryID"); !ok {
		respond.Error(w, http.StatusBadRequest, "ID kategori tidak valid")
		return 0, 0, false
	}
	if linkID, ok = uintParam(r, "linkID"); !ok {
		respond.Error(w, http.StatusBadRequest, "ID link tidak valid")
		return 0, 0, false
	}
	return categoryID, linkID, true
}

func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, linkID, ok := linkParams(w, r)
		if !ok {
			return
		}

		var in linkRequest
		if err := decodeJSON(r, &in); err != nil {
			respond.Error(w, http.StatusBadRequest, "Format input tidak valid")
			return
		}

		link, err := d.Catalog.UpdateLink(r.Context(), categoryID, linkID, in.toLink())
		if err != nil {
			if msg, ok := validationMessage(err); ok {
				respond.Error(w, http.StatusBadRequest, msg)
				return
			}
			if errors.Is(err, sqlstore.ErrLinkNotFound) {
				respond.Error(w, http.StatusNotFound, "Link tidak ditemukan dalam kategori ini")
				return
			}
			internalError(w, d.Logger, "Error memperbarui link", err)
			return
		}
		respond.JSON(w, http.StatusOK, link)
	}
}

func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, linkID, ok := linkParams(w, r)
		if !ok {
			return
		}

		if err := d.Catalog.DeleteLink(r.Context(), categoryID, linkID); err != nil {
			if errors.Is(err, sqlstore.ErrLinkNotFound) {
				respond.Error(w, http.StatusNotFound, "Link tidak ditemukan dalam kategori ini")
				return
			}
			internalError(w, d.Logger, "Error menghapus link", err)
			return
		}
		respond.OK(w, "Link berhasil dihapus")
	}
}

// CategoriesWithLinks is the public catalog: categories by order with their
// active links.
func CategoriesWithLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := d.Catalog.PublicCatalog(r.Context())
		if err != nil {
			internalError(w, d.Logger, "Error fetching categories with links", err)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=60")
		respond.JSON(w, http.StatusOK, categories)
	}
}
