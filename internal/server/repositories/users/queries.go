package users

type queries struct {
	touch            string
	get              string
	getByUserName    string
	list             string
	listLimit        string
	listIDs          string
	count            string
	countActiveSince string
}

const selectColumns = `SELECT id, username, first_name, last_name, joined_at, last_active_at FROM users`

var postgresQueries = queries{
	touch: `INSERT INTO users (id, username, first_name, last_name, joined_at, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   username = excluded.username,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   last_active_at = excluded.last_active_at`,
	get:              selectColumns + ` WHERE id = $1`,
	getByUserName:    selectColumns + ` WHERE lower(username) = lower($1) ORDER BY last_active_at DESC LIMIT 1`,
	list:             selectColumns + ` ORDER BY joined_at, id`,
	listLimit:        selectColumns + ` ORDER BY joined_at, id LIMIT $1`,
	listIDs:          `SELECT id FROM users ORDER BY joined_at, id`,
	count:            `SELECT COUNT(*) FROM users`,
	countActiveSince: `SELECT COUNT(*) FROM users WHERE last_active_at >= $1`,
}

var sqliteQueries = queries{
	touch: `INSERT INTO users (id, username, first_name, last_name, joined_at, last_active_at)
		 VALUES (?1, ?2, ?3, ?4, ?5, ?5)
		 ON CONFLICT (id) DO UPDATE SET
		   username = excluded.username,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   last_active_at = excluded.last_active_at`,
	get:              selectColumns + ` WHERE id = ?`,
	getByUserName:    selectColumns + ` WHERE lower(username) = lower(?) ORDER BY last_active_at DESC LIMIT 1`,
	list:             selectColumns + ` ORDER BY joined_at, id`,
	listLimit:        selectColumns + ` ORDER BY joined_at, id LIMIT ?`,
	listIDs:          `SELECT id FROM users ORDER BY joined_at, id`,
	count:            `SELECT COUNT(*) FROM users`,
	countActiveSince: `SELECT COUNT(*) FROM users WHERE last_active_at >= ?`,
}
