// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

// fakeDatabase is an in-memory Database.
type fakeDatabase struct {
	accounts map[string]Account
	groups   map[string][]int
	lookups  []string
}

func (d *fakeDatabase) LookupAccount(name string) (Account, error) {
	d.lookups = append(d.lookups, name)
	account, ok := d.accounts[name]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}
	return account, nil
}

func (d *fakeDatabase) GroupIDs(account Account) ([]int, error) {
	return d.groups[account.Name], nil
}

func (d *fakeDatabase) LookupGroupID(name string) (int, error) {
	return 0, fmt.Errorf("no group %s", name)
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{
		accounts: map[string]Account{
			"alice":    {Name: "alice", UID: 1000, GID: 1000, Home: "/home/alice"},
			"corp-bob": {Name: "corp-bob", UID: 1001, GID: 100, Home: "/home/bob"},
			"nobody":   {Name: "nobody", UID: 65534, GID: 65534, Home: "/nonexistent"},
		},
		groups: map[string][]int{
			"alice":    {1000, 24, 27},
			"corp-bob": {100},
			"nobody":   {65534},
		},
	}
}

func baseConfig(database Database) Config {
	return Config{
		Database:           database,
		LowerCase:          true,
		AnonymousUser:      "nobody",
		AnonymousDirectory: "/var/spool/bureau-pdf/ANONYMOUS",
		OutputTemplate:     "/var/spool/bureau-pdf/${USER}",
	}
}

func TestResolveNamedAccount(t *testing.T) {
	database := newFakeDatabase()
	resolution, err := Resolve("alice", baseConfig(database))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	identity := resolution.Identity
	if identity.UID != 1000 || identity.GID != 1000 || identity.Name != "alice" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if identity.Anonymous {
		t.Error("named account marked anonymous")
	}
	if !slices.Equal(identity.Groups, []int{1000, 24, 27}) {
		t.Errorf("expected groups [1000 24 27], got %v", identity.Groups)
	}
	if resolution.OutputDirectory != "/var/spool/bureau-pdf/alice" {
		t.Errorf("unexpected output directory %q", resolution.OutputDirectory)
	}
}

func TestResolveLowerCaseRetry(t *testing.T) {
	database := newFakeDatabase()
	resolution, err := Resolve("Alice", baseConfig(database))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolution.Identity.Name != "alice" || resolution.Identity.Anonymous {
		t.Errorf("expected alice, got %+v", resolution.Identity)
	}
	if resolution.Principal != "alice" {
		t.Errorf("expected lower-cased principal, got %q", resolution.Principal)
	}
	if !slices.Equal(database.lookups, []string{"Alice", "alice"}) {
		t.Errorf("unexpected lookups %v", database.lookups)
	}
}

func TestResolveLowerCaseDisabled(t *testing.T) {
	config := baseConfig(newFakeDatabase())
	config.LowerCase = false
	resolution, err := Resolve("Alice", config)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolution.Identity.Anonymous {
		t.Error("expected the anonymous fallback without the lower-case retry")
	}
}

func TestResolveUnknownPrincipalFallsBackToAnonymous(t *testing.T) {
	resolution, err := Resolve("mallory", baseConfig(newFakeDatabase()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	identity := resolution.Identity
	if !identity.Anonymous || identity.Name != "nobody" || identity.UID != 65534 {
		t.Errorf("expected anonymous nobody, got %+v", identity)
	}
	if resolution.OutputDirectory != "/var/spool/bureau-pdf/ANONYMOUS" {
		t.Errorf("expected the anonymous directory, got %q", resolution.OutputDirectory)
	}
	if !slices.Equal(identity.Groups, []int{65534}) {
		t.Errorf("expected the anonymous account's groups, got %v", identity.Groups)
	}
}

func TestResolveDeclinedWithoutAnonymousUser(t *testing.T) {
	config := baseConfig(newFakeDatabase())
	config.AnonymousUser = ""
	_, err := Resolve("mallory", config)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestResolveUnknownAnonymousUserIsFatal(t *testing.T) {
	config := baseConfig(newFakeDatabase())
	config.AnonymousUser = "ghost"
	_, err := Resolve("mallory", config)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrDeclined) {
		t.Fatal("a missing anonymous account must not be reported as declined")
	}
	if !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("expected the error to wrap ErrUnknownAccount, got %v", err)
	}
}

func TestResolveUserPrefix(t *testing.T) {
	database := newFakeDatabase()
	config := baseConfig(database)
	config.UserPrefix = "corp-"
	config.OutputTemplate = "${HOME}/PDF/${USER}"
	resolution, err := Resolve("bob", config)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolution.Identity.Name != "corp-bob" {
		t.Errorf("expected corp-bob, got %q", resolution.Identity.Name)
	}
	if resolution.OutputDirectory != "/home/bob/PDF/bob" {
		t.Errorf("unexpected output directory %q", resolution.OutputDirectory)
	}
}

func TestExpandOutputTemplate(t *testing.T) {
	account := Account{Name: "corp-bob", Home: "/home/bob"}
	tests := []struct {
		name      string
		template  string
		principal string
		modify    func(*Config)
		expected  string
	}{
		{
			name:      "user and home",
			template:  "${HOME}/out/${USER}",
			principal: "bob",
			expected:  "/home/bob/out/bob",
		},
		{
			name:      "repeated placeholders",
			template:  "/srv/${USER}/${USER}",
			principal: "bob",
			expected:  "/srv/bob/bob",
		},
		{
			name:      "canonical name",
			template:  "/srv/${USER}",
			principal: "bob",
			modify:    func(c *Config) { c.CanonicalDirectoryName = true },
			expected:  "/srv/corp-bob",
		},
		{
			name:      "remove prefix",
			template:  "/srv/${USER}",
			principal: "WORKGROUP+bob",
			modify:    func(c *Config) { c.RemovePrefix = "WORKGROUP+" },
			expected:  "/srv/bob",
		},
		{
			name:      "remove prefix needs a match",
			template:  "/srv/${USER}",
			principal: "bob-the-builder",
			modify:    func(c *Config) { c.RemovePrefix = "WORKGROUP+" },
			expected:  "/srv/bob-the-builder",
		},
		{
			name:      "unknown variables kept",
			template:  "/srv/${PRINTER}/${USER}",
			principal: "bob",
			expected:  "/srv/${PRINTER}/bob",
		},
		{
			name:      "line ending trimmed",
			template:  "/srv/${USER}\r\n",
			principal: "bob",
			expected:  "/srv/bob",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := Config{}
			if test.modify != nil {
				test.modify(&config)
			}
			got := ExpandOutputTemplate(test.template, account, test.principal, config)
			if got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}
