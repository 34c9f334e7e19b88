package api

import "github.com/starford/cookhub/internal/models"

// CatalogEntry is one element of the items listing (aliased from the domain layer).
type CatalogEntry = models.CatalogEntry
