package services

import "cantiere/internal/storage"

// The SQLite repository must satisfy every storage port.
var (
	_ ProjectStore    = (*storage.SQLiteRepository)(nil)
	_ EntryStore      = (*storage.SQLiteRepository)(nil)
	_ TaxonomyStore   = (*storage.SQLiteRepository)(nil)
	_ StatsStore      = (*storage.SQLiteRepository)(nil)
	_ ReceiptStore    = (*storage.SQLiteRepository)(nil)
	_ ConnectionStore = (*storage.SQLiteRepository)(nil)
)
