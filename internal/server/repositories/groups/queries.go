package groups

type queries struct {
	list   string
	add    string
	get    string
	remove string
	count  string
}

const selectColumns = `SELECT id, chat_id, handle, added_at FROM mandatory_groups`

var postgresQueries = queries{
	list: selectColumns + ` ORDER BY id`,
	add: `INSERT INTO mandatory_groups (chat_id, handle, added_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (chat_id) DO NOTHING
		 RETURNING id`,
	get:    selectColumns + ` WHERE id = $1`,
	remove: `DELETE FROM mandatory_groups WHERE id = $1`,
	count:  `SELECT COUNT(*) FROM mandatory_groups`,
}

var sqliteQueries = queries{
	list: selectColumns + ` ORDER BY id`,
	add: `INSERT INTO mandatory_groups (chat_id, handle, added_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (chat_id) DO NOTHING
		 RETURNING id`,
	get:    selectColumns + ` WHERE id = ?`,
	remove: `DELETE FROM mandatory_groups WHERE id = ?`,
	count:  `SELECT COUNT(*) FROM mandatory_groups`,
}
