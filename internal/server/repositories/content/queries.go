package content

type queries struct {
	create    string
	getByCode string
	delete    string
	count     string
	list      string
}

const selectColumns = `SELECT id, code, file_id, kind, title, description, added_by, added_at FROM content`

var postgresQueries = queries{
	create: `INSERT INTO content (code, file_id, kind, title, description, added_by, added_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (code) DO NOTHING
		 RETURNING id`,
	getByCode: selectColumns + ` WHERE code = $1`,
	delete:    `DELETE FROM content WHERE code = $1`,
	count:     `SELECT COUNT(*) FROM content`,
	list:      selectColumns + ` ORDER BY id`,
}

var sqliteQueries = queries{
	create: `INSERT INTO content (code, file_id, kind, title, description, added_by, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (code) DO NOTHING
		 RETURNING id`,
	getByCode: selectColumns + ` WHERE code = ?`,
	delete:    `DELETE FROM content WHERE code = ?`,
	count:     `SELECT COUNT(*) FROM content`,
	list:      selectColumns + ` ORDER BY id`,
}
