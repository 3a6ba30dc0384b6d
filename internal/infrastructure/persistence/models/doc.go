// Package models contains the GORM persistence models behind the storefront
// repositories. Domain types stay free of ORM tags; each model converts with
// ToDomain and FromDomain.
package models
