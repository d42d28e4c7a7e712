// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side administrator session store.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

// Lifetime is the fixed absolute session lifetime. There is no idle timeout.
const Lifetime = 24 * time.Hour

// RedisPrefix namespaces session keys in a shared Redis instance.
const RedisPrefix = "turismo:session:"

// New creates a session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := newManager(isDev)
	sm.Store = sqlite3store.New(db)
	return sm
}

// NewRedis creates a session manager backed by Redis.
func NewRedis(client *redis.Client, isDev bool) *scs.SessionManager {
	sm := newManager(isDev)
	sm.Store = goredisstore.NewWithPrefix(client, RedisPrefix)
	return sm
}

func newManager(isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
	}
	return sm
}
