// Package models contains GORM persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Every firm-scoped model embeds FirmAggregateModel and therefore carries
// firm_id. Mappers (ToDomain / XModelFromDomain) convert between the two
// representations; repositories only ever hand domain values to callers.
//
// Column types are kept portable (uuid, varchar, text, decimal, timestamp)
// so the same models migrate on PostgreSQL and on the in-memory SQLite
// database used by repository tests.
package models
