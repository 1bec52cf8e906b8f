package view

import "github.com/MrSnakeDoc/appshelf/internal/domain"

// Item is an application as presented, with the visitor's favorite status.
type Item struct {
	*domain.Application
	Favorite bool   `json:"favorite"`
	Category string `json:"category,omitempty"`
}

// Controls tells the renderer which inputs are interactive.
type Controls struct {
	Search          bool `json:"search"`
	Filters         bool `json:"filters"`
	FavoritesToggle bool `json:"favorites_toggle"`
	PageSize        bool `json:"page_size"`
}

// Page is the view-model published by every recompute.
type Page struct {
	Items []Item `json:"items"`

	// Total is the number of records in scope after filtering.
	Total          int `json:"total"`
	CatalogTotal   int `json:"catalog_total"`
	FavoritesTotal int `json:"favorites_total"`

	Page           int    `json:"page"`
	PageSize       string `json:"page_size"`
	PageCount      int    `json:"page_count"`
	ShowPagination bool   `json:"show_pagination"`
	HasPrev        bool   `json:"has_prev"`
	HasNext        bool   `json:"has_next"`

	ReadOnly    bool     `json:"read_only"`
	CustomLabel string   `json:"custom_label,omitempty"`
	Controls    Controls `json:"controls"`

	Search        string              `json:"search,omitempty"`
	Filters       map[string][]string `json:"filters,omitempty"`
	FavoritesOnly bool                `json:"favorites_only"`
	FavoritesTab  string              `json:"favorites_tab,omitempty"`
	Categories    []string            `json:"categories"`

	// ShareQuery reproduces the current view when appended to the site URL.
	ShareQuery string `json:"share_query"`
}
