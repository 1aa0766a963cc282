// Package models contains the GORM models backing the document store
// collections read by the ledger engine. Each collection lives in its own
// table named ledger_<collection>, with column names matching the record
// field names so rows can be read straight into flat records.
//
// The tables are owned by the upstream system; AutoMigrate over AllModels is
// only used for local sqlite stores and tests.
package models
