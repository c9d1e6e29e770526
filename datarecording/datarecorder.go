// Package datarecording stores scan samples in a SQLite database so that they
// can be inspected after the run.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table created earlier. The entry must
	// have the same type as the table's sample entry.
	InsertData(tableName string, entry any)

	// ListTables returns the table names in creation order.
	ListTables() []string

	// Flush writes all the buffered entries in one transaction.
	Flush()

	// Close flushes the remaining entries and closes the database.
	Close() error
}

const defaultBatchSize = 100000

// Column kinds that SQLite can store without conversion.
var columnKinds = map[reflect.Kind]bool{
	reflect.Bool:    true,
	reflect.Int:     true,
	reflect.Int8:    true,
	reflect.Int16:   true,
	reflect.Int32:   true,
	reflect.Int64:   true,
	reflect.Uint:    true,
	reflect.Uint8:   true,
	reflect.Uint16:  true,
	reflect.Uint32:  true,
	reflect.Uint64:  true,
	reflect.Float32: true,
	reflect.Float64: true,
	reflect.String:  true,
}

// New creates a new DataRecorder that writes into path + ".sqlite3". An empty
// path picks a unique name. It refuses to reuse an existing database file.
func New(path string) (DataRecorder, error) {
	if path == "" {
		path = "ipcscan_" + xid.New().String()
	}

	filename := FileName(path)
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	w := NewWithDB(db)
	atexit.Register(w.Flush)

	return w, nil
}

// NewWithDB creates a DataRecorder on an already opened database. The caller
// keeps ownership of the file name; Close still closes db.
func NewWithDB(db *sql.DB) DataRecorder {
	return &sqliteWriter{
		db:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}
}

// FileName returns the database file that a recorder created with the given
// path writes to.
func FileName(path string) string {
	return strings.TrimSuffix(path, ".sqlite3") + ".sqlite3"
}

type table struct {
	name      string
	entryType reflect.Type
	insertSQL string
	pending   []any
}

type sqliteWriter struct {
	db *sql.DB

	tables    map[string]*table
	order     []*table
	batchSize int
	buffered  int
	closed    bool
}

func columnsOf(entry any) []string {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("entry of type %T is not a struct", entry))
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !columnKinds[f.Type.Kind()] {
			panic(fmt.Sprintf("field %s has unsupported type %s", f.Name, f.Type))
		}
	}

	return structs.Names(entry)
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	columns := columnsOf(sampleEntry)

	w.mustExec(fmt.Sprintf("CREATE TABLE %s (%s)",
		tableName, strings.Join(columns, ", ")))

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	t := &table{
		name:      tableName,
		entryType: reflect.TypeOf(sampleEntry),
		insertSQL: fmt.Sprintf("INSERT INTO %s VALUES (%s)",
			tableName, placeholders),
	}

	w.tables[tableName] = t
	w.order = append(w.order, t)
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, ok := w.tables[tableName]
	if !ok {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	t.pending = append(t.pending, entry)

	w.buffered++
	if w.buffered >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.order))
	for _, t := range w.order {
		names = append(names, t.name)
	}

	return names
}

func (w *sqliteWriter) Flush() {
	if w.buffered == 0 || w.closed {
		return
	}

	tx, err := w.db.Begin()
	if err != nil {
		panic(err)
	}

	for _, t := range w.order {
		if len(t.pending) == 0 {
			continue
		}

		if err := insertAll(tx, t); err != nil {
			_ = tx.Rollback()
			panic(fmt.Errorf("flushing table %s: %w", t.name, err))
		}

		t.pending = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.buffered = 0
}

func insertAll(tx *sql.Tx, t *table) error {
	stmt, err := tx.Prepare(t.insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range t.pending {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			return err
		}
	}

	return nil
}

func (w *sqliteWriter) Close() error {
	if w.closed {
		return nil
	}

	w.Flush()
	w.closed = true

	return w.db.Close()
}

func (w *sqliteWriter) mustExec(query string) {
	if _, err := w.db.Exec(query); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}
}
