package storage

import (
	"errors"
	"testing"
)

// implementations under test; Badger gets a temp dir per test run.
func testDBs(t *testing.T) map[string]DB {
	t.Helper()
	badgerDB, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { badgerDB.Close() })
	return map[string]DB{
		"memory": NewMemory(),
		"badger": badgerDB,
	}
}

func TestDB_PutGet(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			if err := db.Put([]byte("k1"), []byte("v1")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := db.Get([]byte("k1"))
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "v1" {
				t.Errorf("Get = %q, want %q", got, "v1")
			}
		})
	}
}

func TestDB_GetMissing(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Get([]byte("missing"))
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDB_DeleteMissing(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			if err := db.Delete([]byte("missing")); err != nil {
				t.Errorf("Delete missing = %v, want nil", err)
			}
		})
	}
}

func TestDB_HasDelete(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("k")
			if err := db.Put(key, []byte("v")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			has, err := db.Has(key)
			if err != nil || !has {
				t.Fatalf("Has = %v, %v; want true", has, err)
			}
			if err := db.Delete(key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			has, err = db.Has(key)
			if err != nil || has {
				t.Errorf("Has after Delete = %v, %v; want false", has, err)
			}
		})
	}
}

func TestDB_ForEachPrefix(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			entries := map[string]string{
				"claim/a": "1",
				"claim/b": "2",
				"bonus/a": "3",
			}
			for k, v := range entries {
				if err := db.Put([]byte(k), []byte(v)); err != nil {
					t.Fatalf("Put(%s): %v", k, err)
				}
			}

			seen := map[string]string{}
			err := db.ForEach([]byte("claim/"), func(key, value []byte) error {
				seen[string(key)] = string(value)
				return nil
			})
			if err != nil {
				t.Fatalf("ForEach: %v", err)
			}
			if len(seen) != 2 {
				t.Errorf("saw %d keys, want 2: %v", len(seen), seen)
			}
			if seen["claim/a"] != "1" || seen["claim/b"] != "2" {
				t.Errorf("wrong entries: %v", seen)
			}
		})
	}
}

func TestDB_ForEachOrdered(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"p/c", "p/a", "p/b"} {
				if err := db.Put([]byte(k), []byte("v")); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}
			var order []string
			err := db.ForEach([]byte("p/"), func(key, _ []byte) error {
				order = append(order, string(key))
				return nil
			})
			if err != nil {
				t.Fatalf("ForEach: %v", err)
			}
			want := []string{"p/a", "p/b", "p/c"}
			for i, k := range want {
				if i >= len(order) || order[i] != k {
					t.Fatalf("order = %v, want %v", order, want)
				}
			}
		})
	}
}

func TestDB_ForEachEarlyStop(t *testing.T) {
	for name, db := range testDBs(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"p/1", "p/2", "p/3"} {
				if err := db.Put([]byte(k), []byte("v")); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}
			count := 0
			stop := &stopErr{}
			err := db.ForEach([]byte("p/"), func(key, value []byte) error {
				count++
				return stop
			})
			if err != stop {
				t.Errorf("err = %v, want sentinel", err)
			}
			if count != 1 {
				t.Errorf("callback ran %d times, want 1", count)
			}
		})
	}
}

type stopErr struct{}

func (*stopErr) Error() string { return "stop" }
