// Package models holds the gorm table mappings. Domain aggregates carry no
// ORM tags; each model converts to and from its aggregate with ToDomain and
// FromDomain.
package models
