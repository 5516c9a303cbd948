package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("intake %v: %v\n%s", args, err, out.String())
	}
	return out.Bytes()
}

func TestImportListGetDelete(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rows.csv")
	csv := "source_url,company,job_title\n" +
		"https://jobs.example.com/a?utm_source=x,Acme,Engineer\n" +
		"https://jobs.example.com/b,Globex,Designer\n" +
		"not a url,Nope,Nothing\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	var results []struct {
		File   string `json:"file"`
		Result struct {
			Accepted    int `json:"accepted"`
			Quarantined int `json:"quarantined"`
		} `json:"result"`
	}
	if err := json.Unmarshal(run(t, "--data-dir", dir, "import", "csv", csvPath), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Result.Accepted != 2 || results[0].Result.Quarantined != 1 {
		t.Fatalf("import results = %+v", results)
	}

	var page struct {
		Items []struct {
			ID           string `json:"id"`
			CanonicalURL string `json:"canonical_url"`
			Company      string `json:"company"`
		} `json:"items"`
		NextCursor *string `json:"next_cursor"`
	}
	if err := json.Unmarshal(run(t, "--data-dir", dir, "list", "--company", "acme"), &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].CanonicalURL != "https://jobs.example.com/a" || page.NextCursor != nil {
		t.Fatalf("list = %+v", page)
	}
	id := page.Items[0].ID

	var view struct {
		ID      string `json:"id"`
		Company string `json:"company"`
	}
	if err := json.Unmarshal(run(t, "--data-dir", dir, "get", id), &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != id || view.Company != "Acme" {
		t.Fatalf("get = %+v", view)
	}

	var resolved map[string]int
	if err := json.Unmarshal(run(t, "--data-dir", dir, "ats", "resolve"), &resolved); err != nil {
		t.Fatal(err)
	}
	if resolved["resolved"] != 2 {
		t.Fatalf("ats resolve = %v", resolved)
	}

	run(t, "--data-dir", dir, "delete", id)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--data-dir", dir, "get", id})
	if err := root.Execute(); err == nil {
		t.Fatal("get after delete succeeded")
	}
}

func TestImportCSVDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.csv")
	p2 := filepath.Join(dir, "two.csv")
	for _, p := range []string{p1, p2} {
		data := "source_url\nhttps://jobs.example.com/" + filepath.Base(p) + "\n"
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	run(t, "--data-dir", dir, "import", "--dry-run", "csv", "--parallel", "2", p1, p2)

	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(run(t, "--data-dir", dir, "list"), &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("dry run stored %d postings", len(page.Items))
	}
}
