// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/turismo-admin/internal/model"
)

// testDB creates a temporary migrated test database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "turismo-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newPoint(name, category string, created time.Time) model.TouristPoint {
	return model.TouristPoint{
		ID:          NewID(),
		Name:        model.NewLocalized(name, "", ""),
		Description: model.NewLocalized("desc "+name, "", ""),
		Address:     model.NewLocalized("Rua "+name, "", ""),
		Latitude:    -25.4,
		Longitude:   -49.2,
		Category:    category,
		ImageURLs:   model.StringList{},
		IsActive:    true,
		CreatedAt:   created,
		UpdatedAt:   created,
		CreatedBy:   "tester",
	}
}

func TestCreateAdmin_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	a, err := q.CreateAdmin(ctx, CreateAdminParams{
		ID: NewID(), Email: "ana@example.com", PasswordHash: "h", Name: "Ana",
		Role: model.RoleAdmin, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if !a.IsActive {
		t.Error("new admin should be active")
	}
	if a.CreatedBy.Valid {
		t.Error("CreatedBy should be NULL when empty")
	}

	_, err = q.CreateAdmin(ctx, CreateAdminParams{
		ID: NewID(), Email: "ana@example.com", PasswordHash: "h", Name: "Ana 2",
		Role: model.RoleAdmin, CreatedAt: now,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second CreateAdmin error = %v, want ErrDuplicate", err)
	}

	found, err := q.GetAdminByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if found.ID != a.ID {
		t.Errorf("found ID = %q, want %q", found.ID, a.ID)
	}

	if _, err := q.GetAdminByEmail(ctx, "missing@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing email error = %v, want sql.ErrNoRows", err)
	}
}

func TestAdminUpdates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	a, err := q.CreateAdmin(ctx, CreateAdminParams{
		ID: NewID(), Email: "b@example.com", PasswordHash: "old", Name: "B",
		Role: model.RoleSuperAdmin, CreatedBy: "creator", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	if err := q.UpdateAdminPassword(ctx, a.ID, "new", now); err != nil {
		t.Fatalf("UpdateAdminPassword: %v", err)
	}
	if err := q.UpdateAdminLastLogin(ctx, a.ID, now); err != nil {
		t.Fatalf("UpdateAdminLastLogin: %v", err)
	}
	if err := q.SetAdminActive(ctx, a.ID, false, now); err != nil {
		t.Fatalf("SetAdminActive: %v", err)
	}

	got, err := q.GetAdminByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAdminByID: %v", err)
	}
	if got.PasswordHash != "new" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "new")
	}
	if !got.LastLoginAt.Valid {
		t.Error("LastLoginAt should be set")
	}
	if got.IsActive {
		t.Error("admin should be inactive")
	}
	if got.CreatedBy.String != "creator" {
		t.Errorf("CreatedBy = %q", got.CreatedBy.String)
	}

	if err := q.UpdateAdminPassword(ctx, "nope", "x", now); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("update of missing admin error = %v, want sql.ErrNoRows", err)
	}
}

func TestTouristPoints_CreateGetUpdate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC().Truncate(time.Second)

	p := newPoint("Parque Barigui", "parque", now)
	phone := "+55 41 3333-3333"
	p.Phone = &phone
	hours := model.Localized{PT: "24h"}
	p.OpeningHours = &hours
	if err := q.CreateTouristPoint(ctx, p); err != nil {
		t.Fatalf("CreateTouristPoint: %v", err)
	}

	got, err := q.GetTouristPoint(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetTouristPoint: %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("Name = %+v, want %+v", got.Name, p.Name)
	}
	if got.Phone == nil || *got.Phone != phone {
		t.Errorf("Phone = %v", got.Phone)
	}
	if got.Website != nil {
		t.Errorf("Website = %v, want nil", *got.Website)
	}
	if got.OpeningHours == nil || got.OpeningHours.PT != "24h" || got.OpeningHours.EN != "" {
		t.Errorf("OpeningHours = %+v", got.OpeningHours)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if len(got.ImageURLs) != 0 {
		t.Errorf("ImageURLs = %v, want empty", got.ImageURLs)
	}

	got.Category = "natureza"
	got.ImageURLs = model.StringList{"https://x/a.jpg"}
	by := "editor"
	got.UpdatedBy = &by
	got.OpeningHours = nil
	if err := q.UpdateTouristPoint(ctx, got); err != nil {
		t.Fatalf("UpdateTouristPoint: %v", err)
	}

	again, err := q.GetTouristPoint(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetTouristPoint: %v", err)
	}
	if again.Category != "natureza" || len(again.ImageURLs) != 1 || again.OpeningHours != nil {
		t.Errorf("update not persisted: %+v", again)
	}
	if again.UpdatedBy == nil || *again.UpdatedBy != "editor" {
		t.Errorf("UpdatedBy = %v", again.UpdatedBy)
	}
}

func TestSoftDeleteTouristPoint(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	p := newPoint("Passeio Público", "parque", now)
	if err := q.CreateTouristPoint(ctx, p); err != nil {
		t.Fatalf("CreateTouristPoint: %v", err)
	}
	if err := q.SoftDeleteTouristPoint(ctx, p.ID, "admin-1", now); err != nil {
		t.Fatalf("SoftDeleteTouristPoint: %v", err)
	}

	got, err := q.GetTouristPoint(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetTouristPoint after delete: %v", err)
	}
	if got.IsActive {
		t.Error("IsActive should be false after soft delete")
	}
	if got.DeletedAt == nil || got.DeletedBy == nil || *got.DeletedBy != "admin-1" {
		t.Errorf("deleted fields = %v / %v", got.DeletedAt, got.DeletedBy)
	}

	if err := q.SoftDeleteTouristPoint(ctx, "missing", "x", now); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("delete missing error = %v, want sql.ErrNoRows", err)
	}
}

func TestListTouristPoints_FilterOrderPage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	base := time.Now().UTC()

	var ids []string
	for i := 0; i < 5; i++ {
		category := "parque"
		if i%2 == 1 {
			category = "museu"
		}
		p := newPoint("P"+string(rune('A'+i)), category, base.Add(time.Duration(i)*time.Minute))
		if err := q.CreateTouristPoint(ctx, p); err != nil {
			t.Fatalf("CreateTouristPoint: %v", err)
		}
		ids = append(ids, p.ID)
	}
	if err := q.SoftDeleteTouristPoint(ctx, ids[0], "x", base); err != nil {
		t.Fatalf("SoftDeleteTouristPoint: %v", err)
	}

	all, err := q.ListTouristPoints(ctx, ContentFilter{})
	if err != nil {
		t.Fatalf("ListTouristPoints: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(all) = %d, want 5", len(all))
	}
	if all[0].ID != ids[4] || all[4].ID != ids[0] {
		t.Error("list should be ordered newest first")
	}

	page, err := q.ListTouristPoints(ctx, ContentFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListTouristPoints page: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[2] {
		t.Errorf("page 2 = %d items, first %q, want %q", len(page), page[0].ID, ids[2])
	}

	active := true
	n, err := q.CountTouristPoints(ctx, ContentFilter{Category: "parque", Active: &active})
	if err != nil {
		t.Fatalf("CountTouristPoints: %v", err)
	}
	if n != 2 {
		t.Errorf("active parque count = %d, want 2", n)
	}

	total, err := q.CountActiveTouristPoints(ctx)
	if err != nil {
		t.Fatalf("CountActiveTouristPoints: %v", err)
	}
	if total != 4 {
		t.Errorf("CountActiveTouristPoints = %d, want 4", total)
	}
}

func TestEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC().Truncate(time.Second)

	lat := -25.43
	for i, title := range []string{"Antigo", "Novo"} {
		e := model.Event{
			ID:          NewID(),
			Title:       model.NewLocalized(title, "", ""),
			Description: model.NewLocalized("d", "", ""),
			StartDate:   now.AddDate(0, 0, i),
			EndDate:     now.AddDate(0, 0, i+1),
			Latitude:    &lat,
			Category:    "musica",
			IsFeatured:  i == 1,
			ImageURLs:   model.StringList{},
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   "tester",
		}
		if err := q.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListEvents(ctx, ContentFilter{Category: "musica"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Title.PT != "Novo" {
		t.Errorf("first event = %q, want latest start date first", events[0].Title.PT)
	}
	if !events[0].IsFeatured || events[1].IsFeatured {
		t.Error("IsFeatured not persisted")
	}
	if events[0].Latitude == nil || *events[0].Latitude != lat || events[0].Longitude != nil {
		t.Errorf("coordinates = %v / %v", events[0].Latitude, events[0].Longitude)
	}

	got, err := q.GetEvent(ctx, events[1].ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !got.StartDate.Equal(now) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, now)
	}

	n, err := q.CountActiveEvents(ctx)
	if err != nil || n != 2 {
		t.Errorf("CountActiveEvents = %d, %v", n, err)
	}
}

func TestImageURLsAndMediaObjects(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	p := newPoint("Largo da Ordem", "cultura", now)
	if err := q.CreateTouristPoint(ctx, p); err != nil {
		t.Fatalf("CreateTouristPoint: %v", err)
	}

	url := "http://localhost/storage/b/tourist-points/1-a-x.jpg"
	if err := q.CreateMediaObject(ctx, model.MediaObject{
		Key: "tourist-points/1-a-x.jpg", URL: url, ContentType: model.MimeTypeJPEG,
		Size: 10, UploadedBy: "tester", CreatedAt: now.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateMediaObject: %v", err)
	}

	orphans, err := q.ListOrphanMediaObjects(ctx, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListOrphanMediaObjects: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("orphans = %d, want 1", len(orphans))
	}

	err = InTx(ctx, db, func(q *Queries) error {
		if err := q.SetImageURLs(ctx, model.CollectionTouristPoints, p.ID, model.StringList{url}, now); err != nil {
			return err
		}
		return q.AttachMediaObjects(ctx, []string{"tourist-points/1-a-x.jpg"}, model.CollectionTouristPoints, p.ID)
	})
	if err != nil {
		t.Fatalf("attach in tx: %v", err)
	}

	urls, err := q.GetImageURLs(ctx, model.CollectionTouristPoints, p.ID)
	if err != nil {
		t.Fatalf("GetImageURLs: %v", err)
	}
	if len(urls) != 1 || urls[0] != url {
		t.Errorf("urls = %v", urls)
	}

	m, err := q.GetMediaObjectByURL(ctx, url)
	if err != nil {
		t.Fatalf("GetMediaObjectByURL: %v", err)
	}
	if m.OwnerID.String != p.ID || m.OwnerCollection.String != model.CollectionTouristPoints {
		t.Errorf("owner = %v/%v", m.OwnerCollection, m.OwnerID)
	}

	orphans, err = q.ListOrphanMediaObjects(ctx, now, 10)
	if err != nil {
		t.Fatalf("ListOrphanMediaObjects: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("attached object listed as orphan")
	}

	if err := q.DeleteMediaObject(ctx, m.Key); err != nil {
		t.Fatalf("DeleteMediaObject: %v", err)
	}
	if _, err := q.GetMediaObjectByURL(ctx, url); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("after delete error = %v, want sql.ErrNoRows", err)
	}

	if _, err := q.GetImageURLs(ctx, "unknown", p.ID); err == nil {
		t.Error("unknown collection should fail")
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	boom := errors.New("boom")
	err := InTx(ctx, db, func(q *Queries) error {
		if err := q.CreateTouristPoint(ctx, newPoint("Rollback", "parque", now)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	n, err := New(db).CountTouristPoints(ctx, ContentFilter{})
	if err != nil {
		t.Fatalf("CountTouristPoints: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestAuditLog(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	for i, msg := range []string{"old", "new"} {
		err := q.CreateAuditEntry(ctx, CreateAuditEntryParams{
			Level: model.AuditLevelInfo, Category: model.AuditCategoryAuth, Message: msg,
			CreatedAt: now.Add(time.Duration(i-1) * 48 * time.Hour),
		})
		if err != nil {
			t.Fatalf("CreateAuditEntry: %v", err)
		}
	}

	entries, err := q.ListAuditEntries(ctx, 10)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "new" || entries[0].Metadata != "{}" {
		t.Fatalf("entries = %+v", entries)
	}

	deleted, err := q.DeleteAuditEntriesBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteAuditEntriesBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestSeed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	q := New(db)
	n, err := q.CountActiveTouristPoints(ctx)
	if err != nil {
		t.Fatalf("CountActiveTouristPoints: %v", err)
	}
	if n != 3 {
		t.Errorf("tourist points = %d, want 3 (seed must be idempotent)", n)
	}
}
