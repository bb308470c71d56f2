package db

import "testing"

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c = ?"

	if got := Rebind(DriverSQLite, q); got != q {
		t.Fatalf("sqlite: got %q", got)
	}

	want := "SELECT a FROM t WHERE b = $1 AND c = $2"
	if got := Rebind(DriverPostgres, q); got != want {
		t.Fatalf("pgx: got %q, want %q", got, want)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("select 1: %v (%d)", err, one)
	}
}
