// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"fmt"
	"os/user"
	"strconv"
)

// ErrUnknownAccount is returned by a [Database] when no account has
// the requested name.
var ErrUnknownAccount = errors.New("identity: unknown account")

// Account is a passwd entry.
type Account struct {
	Name string
	UID  int
	GID  int
	Home string
}

// Database is the source of account and group membership data.
type Database interface {
	// LookupAccount returns the account with the given name, or an
	// error wrapping ErrUnknownAccount.
	LookupAccount(name string) (Account, error)

	// GroupIDs returns every group the account belongs to, including
	// its primary group.
	GroupIDs(account Account) ([]int, error)

	// LookupGroupID returns the gid of the named group.
	LookupGroupID(name string) (int, error)
}

// System returns a Database backed by the host's account databases.
func System() Database { return systemDatabase{} }

type systemDatabase struct{}

func (systemDatabase) LookupAccount(name string) (Account, error) {
	entry, err := user.Lookup(name)
	if err != nil {
		var unknown user.UnknownUserError
		if errors.As(err, &unknown) {
			return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
		}
		return Account{}, fmt.Errorf("looking up account %q: %w", name, err)
	}
	uid, err := strconv.Atoi(entry.Uid)
	if err != nil {
		return Account{}, fmt.Errorf("parsing uid %q of %s: %w", entry.Uid, name, err)
	}
	gid, err := strconv.Atoi(entry.Gid)
	if err != nil {
		return Account{}, fmt.Errorf("parsing gid %q of %s: %w", entry.Gid, name, err)
	}
	return Account{Name: entry.Username, UID: uid, GID: gid, Home: entry.HomeDir}, nil
}

func (systemDatabase) GroupIDs(account Account) ([]int, error) {
	entry := &user.User{
		Uid:      strconv.Itoa(account.UID),
		Gid:      strconv.Itoa(account.GID),
		Username: account.Name,
		HomeDir:  account.Home,
	}
	names, err := entry.GroupIds()
	if err != nil {
		return nil, fmt.Errorf("listing groups of %s: %w", account.Name, err)
	}
	gids := make([]int, 0, len(names)+1)
	havePrimary := false
	for _, name := range names {
		gid, err := strconv.Atoi(name)
		if err != nil {
			return nil, fmt.Errorf("parsing gid %q of %s: %w", name, account.Name, err)
		}
		if gid == account.GID {
			havePrimary = true
		}
		gids = append(gids, gid)
	}
	if !havePrimary {
		gids = append([]int{account.GID}, gids...)
	}
	return gids, nil
}

func (systemDatabase) LookupGroupID(name string) (int, error) {
	group, err := user.LookupGroup(name)
	if err != nil {
		return 0, fmt.Errorf("looking up group %q: %w", name, err)
	}
	gid, err := strconv.Atoi(group.Gid)
	if err != nil {
		return 0, fmt.Errorf("parsing gid %q of group %s: %w", group.Gid, name, err)
	}
	return gid, nil
}
