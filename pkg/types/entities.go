package types

// Table names of the dataset.
const (
	UsersTable      = "Users"
	ActivitiesTable = "Activities"
)

// StandardTableNames lists the tables created by the schema, in creation
// order.
var StandardTableNames = []string{
	UsersTable,
	ActivitiesTable,
}

// User is the entity record. ID is assigned by the store and never reused.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Activity is a fact record that references exactly one User by ID.
type Activity struct {
	ID     int64  `json:"activity_id"`
	UserID int64  `json:"user_id"`
	Game   string `json:"game"`
	Score  int64  `json:"score"`
	Date   string `json:"date"`
}

// Record is one bulk-load row keyed by column name. A nil value means the
// field is absent.
type Record map[string]any

// Has reports whether field is present with a non-nil value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// TableInfo describes one table of the live schema.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}
