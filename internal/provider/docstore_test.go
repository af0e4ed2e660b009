package provider

import "testing"

func TestDocAndSplitPath(t *testing.T) {
	path := Doc("users", "uid-1")
	if path != "users/uid-1" {
		t.Fatalf("Doc() = %q, want %q", path, "users/uid-1")
	}

	collection, id, err := SplitPath(path)
	if err != nil {
		t.Fatalf("SplitPath() error = %v", err)
	}
	if collection != "users" || id != "uid-1" {
		t.Errorf("SplitPath() = %q, %q", collection, id)
	}
}

func TestSplitPath_Invalid(t *testing.T) {
	for _, path := range []string{"", "users", "users/", "/uid", "users/uid/extra"} {
		if _, _, err := SplitPath(path); err == nil {
			t.Errorf("SplitPath(%q) expected error", path)
		}
	}
}

func TestDocument_DataTo(t *testing.T) {
	doc := &Document{
		Path: "users/uid-1",
		Data: map[string]any{
			"uid":         "uid-1",
			"email":       "a@b.com",
			"displayName": "Jane Doe",
			"createdAt":   "1970-01-01T00:00:00Z",
		},
	}

	var out struct {
		UID         string `json:"uid"`
		DisplayName string `json:"displayName"`
		CreatedAt   string `json:"createdAt"`
	}
	if err := doc.DataTo(&out); err != nil {
		t.Fatalf("DataTo() error = %v", err)
	}
	if out.UID != "uid-1" || out.DisplayName != "Jane Doe" || out.CreatedAt != "1970-01-01T00:00:00Z" {
		t.Errorf("unexpected decode: %+v", out)
	}
}

func TestIsServerTimestamp(t *testing.T) {
	if !IsServerTimestamp(ServerTimestamp) {
		t.Error("ServerTimestamp should be detected")
	}
	if IsServerTimestamp("now") {
		t.Error("string should not be detected as ServerTimestamp")
	}
}
