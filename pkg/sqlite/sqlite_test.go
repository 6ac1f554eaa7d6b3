package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"testing"
)

func TestSQLiteVecExtension(t *testing.T) {
	// Open database using the custom driver registered in init.go
	db, err := sql.Open("sqlite3_vec", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Verify extension is loaded by calling a specific function from sqlite-vec
	var version string
	err = db.QueryRow("SELECT vec_version()").Scan(&version)
	if err != nil {
		t.Fatalf("Failed to query vec_version(): %v. \nIt seems the extension is not linked or loaded correctly.", err)
	}

	if version == "" {
		t.Error("Expected a version string, got empty")
	}
}

func TestMemoryVectorRelation(t *testing.T) {
	db, err := sql.Open("sqlite3_vec", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Setup a schema mirroring the app's memories layout
	_, err = db.Exec(`CREATE TABLE memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id TEXT,
		content TEXT
	)`)
	if err != nil {
		t.Fatal(err)
	}

	// Create virtual table for vectors.
	// Note: In sqlite-vec, rowid is the default primary key.
	_, err = db.Exec(`CREATE VIRTUAL TABLE memories_vec USING vec0(embedding float[3])`)
	if err != nil {
		t.Fatal(err)
	}

	content := "remembered conversation turn"
	res, err := db.Exec(`INSERT INTO memories (author_id, content) VALUES (?, ?)`, "u1", content)
	if err != nil {
		t.Fatal(err)
	}
	memID, err := res.LastInsertId()
	if err != nil {
		t.Fatal(err)
	}

	// Insert vector tied to the memory ID via rowid
	vec := []float32{0.1, 0.2, 0.3}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		t.Fatal(err)
	}

	_, err = db.Exec(`INSERT INTO memories_vec(rowid, embedding) VALUES (?, ?)`, memID, buf.Bytes())
	if err != nil {
		t.Fatalf("Failed to insert vector with rowid: %v", err)
	}

	// Verify the relation using a JOIN
	var retrievedContent string
	err = db.QueryRow(`
		SELECT m.content
		FROM memories m
		JOIN memories_vec v ON m.id = v.rowid
		WHERE v.rowid = ?`, memID).Scan(&retrievedContent)

	if err != nil {
		t.Fatalf("JOIN query failed: %v. This means the vector is not correctly linked to the memory ID.", err)
	}

	if retrievedContent != content {
		t.Errorf("Expected content '%s', but got '%s'", content, retrievedContent)
	}
}
