// Package core defines the shared language of catalognav.
//
// This package contains:
//   - Catalog entities (Catalog, Database, Table, Field, Relationship)
//   - Display entities (Link, Column, TableView)
//   - Service interfaces (SnapshotStore)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
