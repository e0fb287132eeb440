package main

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/arvek/bnrg/codec"
	"github.com/arvek/bnrg/internal/fileio"
	"github.com/arvek/bnrg/record"
)

var exportSQLiteCmd = &cobra.Command{
	Use:   "export-sqlite <file> <db>",
	Short: "Flatten a decoded graph's records into a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportSQLite,
}

func runExportSQLite(cmd *cobra.Command, args []string) error {
	savePath, dbPath := args[0], args[1]

	mapped, err := fileio.Open(savePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", savePath, err)
	}
	defer mapped.Close()
	graph, err := codec.Decode(mapped.Bytes())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", savePath, err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return err
	}
	return exportGraph(db, graph)
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS records;
		DROP TABLE IF EXISTS members;
		CREATE TABLE records (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			class_type TEXT,
			string_value TEXT
		);
		CREATE TABLE members (
			record_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT,
			kind TEXT NOT NULL,
			ref_target INTEGER,
			primitive_value TEXT,
			PRIMARY KEY (record_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func exportGraph(db *sql.DB, g *record.Graph) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertRecord, err := tx.Prepare("INSERT INTO records (id, kind, class_type, string_value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	insertMember, err := tx.Prepare("INSERT INTO members (record_id, position, name, kind, ref_target, primitive_value) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}

	for id, rec := range g.Records {
		classType, strVal := "", ""
		switch r := rec.(type) {
		case *record.StringRecord:
			strVal = r.Value
		case *record.LibraryRecord:
			strVal = r.Name
		case *record.Class:
			classType = g.ClassTypes[r.ClassTypeID].Name
			names := g.ClassTypes[r.ClassTypeID].MemberNames
			for i, m := range r.Members {
				if err := insertMemberRow(insertMember, id, i, names[i], m); err != nil {
					return err
				}
			}
		case *record.BinaryArray:
			for i, m := range r.Elements {
				if err := insertMemberRow(insertMember, id, i, "", m); err != nil {
					return err
				}
			}
		}
		if _, err := insertRecord.Exec(id, rec.Kind().String(), classType, strVal); err != nil {
			return fmt.Errorf("inserting record %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func insertMemberRow(stmt *sql.Stmt, recordID int32, position int, name string, m record.Member) error {
	var refTarget *int32
	var primVal string
	switch m.Kind {
	case record.MemberReference:
		ref := m.Ref
		refTarget = &ref
	case record.MemberPrimitive:
		primVal = fmt.Sprintf("%+v", m.Prim)
	}
	_, err := stmt.Exec(recordID, position, name, memberKindName(m.Kind), refTarget, primVal)
	return err
}

func memberKindName(k record.MemberKind) string {
	switch k {
	case record.MemberPrimitive:
		return "primitive"
	case record.MemberReference:
		return "reference"
	case record.MemberNull:
		return "null"
	case record.MemberNullMultiple:
		return "null_multiple"
	default:
		return "unknown"
	}
}
