package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams narrows and orders the rows returned by DataReader.Query.
type QueryParams struct {
	// Where is a filter without the WHERE keyword, e.g. "Value > ?".
	Where string

	// Args fill the placeholders in Where.
	Args []any

	// OrderBy is a sort clause without the ORDER BY keywords, e.g. "Line".
	OrderBy string
}

// DataReader reads back what a DataRecorder stored.
type DataReader interface {
	// MapTable tells the reader which struct a table's rows decode into. A
	// table must be mapped before it can be queried.
	MapTable(tableName string, sampleEntry any)

	// Query returns pointers to the mapped struct, one per matching row.
	Query(ctx context.Context, tableName string, params QueryParams) (
		[]any, error)

	Close() error
}

type sqliteReader struct {
	db      *sql.DB
	typeMap map[string]reflect.Type
}

// NewReader opens a database written by a DataRecorder in read-only mode.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbFilename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader on an already opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

// NewSampleReader opens a database and maps the tables written by a
// SampleRecorder.
func NewSampleReader(dbFilename string) (DataReader, error) {
	r, err := NewReader(dbFilename)
	if err != nil {
		return nil, err
	}

	r.MapTable(SampleTableName, SampleEntry{})
	r.MapTable(SummaryTableName, SummaryEntry{})

	return r, nil
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, error) {
	entryType, ok := r.typeMap[tableName]
	if !ok {
		return nil, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	query := "SELECT * FROM " + tableName
	if params.Where != "" {
		query += " WHERE " + params.Where
	}

	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}

	rows, err := r.db.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return decodeRows(rows, entryType)
}

// decodeRows fills one entryType value per row, matching columns to fields by
// name. Columns without a field are read and dropped.
func decodeRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, col := range columns {
			if f := entry.Elem().FieldByName(col); f.IsValid() {
				targets[i] = f.Addr().Interface()
			} else {
				targets[i] = new(any)
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
