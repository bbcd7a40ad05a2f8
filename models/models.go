package models

// All returns every persisted model in dependency order, for schema migration
func All() []any {
	return []any{
		&User{},
		&Debtor{},
		&Payment{},
		&FollowUp{},
		&PTP{},
		&CollectionUpdate{},
		&EventLog{},
		&CallLog{},
		&DownloadLog{},
		&ExportLog{},
	}
}
