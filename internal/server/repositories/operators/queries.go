package operators

type queries struct {
	list   string
	add    string
	remove string
	exists string
}

var postgresQueries = queries{
	list: `SELECT user_id, username, granted_by, granted_at FROM operators ORDER BY granted_at, user_id`,
	add: `INSERT INTO operators (user_id, username, granted_by, granted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
	remove: `DELETE FROM operators WHERE user_id = $1`,
	exists: `SELECT EXISTS (SELECT 1 FROM operators WHERE user_id = $1)`,
}

var sqliteQueries = queries{
	list: `SELECT user_id, username, granted_by, granted_at FROM operators ORDER BY granted_at, user_id`,
	add: `INSERT INTO operators (user_id, username, granted_by, granted_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
	remove: `DELETE FROM operators WHERE user_id = ?`,
	exists: `SELECT EXISTS (SELECT 1 FROM operators WHERE user_id = ?)`,
}
