package models

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Currency{},
		&Account{},
		&Category{},
		&Transaction{},
		&AuditLog{},
	}
}
