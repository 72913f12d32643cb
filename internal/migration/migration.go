package migration

// Migration represents a single schema migration loaded from disk.
// The filename is the migration's identity: it is the ledger key and the
// sort key. Content is never inspected beyond reading the SQL to execute,
// and a filename once applied is never re-executed even if the file
// changes on disk.
type Migration struct {
	Filename string // "001_init.sql" — basename, unique within the directory
	SQL      string // full file content, executed as a single unit
	FilePath string // path the file was read from
}
