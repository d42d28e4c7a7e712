// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/turismo-admin/internal/model"
	"github.com/olegiv/turismo-admin/internal/store"
)

func TestCreateTouristPoint_MinimalFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tp, err := f.content.CreateTouristPoint(ctx, TouristPointInput{
		Name:        model.Localized{PT: "Jardim Botânico"},
		Description: model.Localized{PT: "Estufa de vidro"},
		Address:     model.Localized{PT: "R. Eng. Ostoja Roguski"},
		Latitude:    "-25.44",
		Longitude:   "-49.23",
		Category:    "parque",
	}, nil, "admin-1")
	require.NoError(t, err)

	got, err := f.content.GetTouristPoint(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Name.PT, got.Name.EN)
	assert.Equal(t, got.Name.PT, got.Name.ES)
	assert.Equal(t, "Estufa de vidro", got.Description.ES)
	assert.NotNil(t, got.ImageURLs)
	assert.Empty(t, got.ImageURLs)
	assert.True(t, got.IsActive)
	assert.Zero(t, got.Rating)
	assert.Zero(t, got.ReviewCount)
	assert.Nil(t, got.OpeningHours)
	assert.Nil(t, got.Phone)
	assert.Equal(t, -25.44, got.Latitude)
	assert.Equal(t, "admin-1", got.CreatedBy)
}

func TestCreateTouristPoint_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := minimalPoint("Parque Barigui")
	missing.Category = ""
	_, err := f.content.CreateTouristPoint(ctx, missing, nil, "a")
	assert.Equal(t, MsgTouristPointRequired, validationMessage(t, err))

	bad := minimalPoint("Parque Barigui")
	bad.Latitude = "abc"
	_, err = f.content.CreateTouristPoint(ctx, bad, nil, "a")
	assert.Equal(t, MsgInvalidCoordinates, validationMessage(t, err))

	outOfRange := minimalPoint("Parque Barigui")
	outOfRange.Longitude = "200"
	_, err = f.content.CreateTouristPoint(ctx, outOfRange, []UploadFile{pngFile(t, "a.png")}, "a")
	assert.Equal(t, MsgInvalidCoordinates, validationMessage(t, err))
	assert.Zero(t, f.bucket.Len(), "validation failures must not upload")
}

func TestCreateTouristPoint_WithImagesAndHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := minimalPoint("Ópera de Arame")
	in.OpeningHours = model.Localized{PT: "Ter-Dom 8h-18h"}
	in.Phone = strPtr("(41) 3355-6000")

	tp, err := f.content.CreateTouristPoint(ctx, in,
		[]UploadFile{pngFile(t, "Fachada Ópera.png"), pngFile(t, "interior.png")}, "admin-1")
	require.NoError(t, err)

	require.Len(t, tp.ImageURLs, 2)
	assert.Equal(t, 2, f.bucket.Len())
	require.NotNil(t, tp.OpeningHours)
	assert.Equal(t, "Ter-Dom 8h-18h", tp.OpeningHours.PT)
	assert.Empty(t, tp.OpeningHours.EN)
	assert.Equal(t, "(41) 3355-6000", *tp.Phone)

	q := store.New(f.db)
	for _, u := range tp.ImageURLs {
		obj, err := q.GetMediaObjectByURL(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, model.CollectionTouristPoints, obj.OwnerCollection.String)
		assert.Equal(t, tp.ID, obj.OwnerID.String)
		assert.True(t, f.bucket.IsPublic(obj.Key))
	}
	assert.Contains(t, tp.ImageURLs[0], "/"+testBucket+"/tourist-points/")
	assert.Contains(t, tp.ImageURLs[0], "fachada-opera.png")
}

func TestUpdateTouristPoint_Merge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := minimalPoint("Museu Oscar Niemeyer")
	in.Name.EN = "Oscar Niemeyer Museum"
	in.Phone = strPtr("(41) 3350-4400")
	in.Website = strPtr("https://www.museuoscarniemeyer.org.br")
	in.OpeningHours = model.Localized{PT: "10h-18h", EN: "10am-6pm"}
	orig, err := f.content.CreateTouristPoint(ctx, in, []UploadFile{pngFile(t, "olho.png")}, "admin-1")
	require.NoError(t, err)

	// Only a Spanish name, the phone (cleared), Spanish hours, a status and one image.
	upd := TouristPointInput{
		Name:         model.Localized{ES: "Museo Oscar Niemeyer"},
		Phone:        strPtr(""),
		OpeningHours: model.Localized{ES: "10h-18h (es)"},
		IsActive:     strPtr("false"),
	}
	got, err := f.content.UpdateTouristPoint(ctx, orig.ID, upd, []UploadFile{pngFile(t, "novo.png")}, "admin-2")
	require.NoError(t, err)

	assert.Equal(t, orig.Name.PT, got.Name.PT)
	assert.Equal(t, "Oscar Niemeyer Museum", got.Name.EN)
	assert.Equal(t, "Museo Oscar Niemeyer", got.Name.ES)
	assert.Equal(t, orig.Description, got.Description)
	assert.Equal(t, orig.Address, got.Address)
	assert.Equal(t, orig.Latitude, got.Latitude)
	assert.Equal(t, orig.Category, got.Category)
	assert.Nil(t, got.Phone, "a submitted empty phone clears it")
	assert.Equal(t, orig.Website, got.Website, "an absent website is kept")
	require.NotNil(t, got.OpeningHours)
	assert.Equal(t, model.Localized{PT: "10h-18h", EN: "10am-6pm", ES: "10h-18h (es)"}, *got.OpeningHours)
	assert.False(t, got.IsActive)
	require.Len(t, got.ImageURLs, 2)
	assert.Equal(t, orig.ImageURLs[0], got.ImageURLs[0], "new images are appended")
	require.NotNil(t, got.UpdatedBy)
	assert.Equal(t, "admin-2", *got.UpdatedBy)

	stored, err := f.content.GetTouristPoint(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ImageURLs, stored.ImageURLs)
	assert.Equal(t, "admin-1", stored.CreatedBy)
}

func TestUpdateTouristPoint_EmptySubmissionKeepsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orig, err := f.content.CreateTouristPoint(ctx, minimalPoint("Largo da Ordem"), nil, "a")
	require.NoError(t, err)

	got, err := f.content.UpdateTouristPoint(ctx, orig.ID, TouristPointInput{}, nil, "b")
	require.NoError(t, err)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Longitude, got.Longitude)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.OpeningHours)
	assert.Empty(t, got.ImageURLs)
}

func TestUpdateTouristPoint_PTFallbackForMissingTranslations(t *testing.T) {
	cur := model.TouristPoint{Name: model.Localized{PT: "Antigo"}}
	got := mergeTouristPoint(cur, TouristPointInput{Name: model.Localized{PT: "Novo"}}, nil, nil, nil, "x", time.Now())
	assert.Equal(t, model.Localized{PT: "Novo", EN: "Novo", ES: "Novo"}, got.Name)
}

func TestUpdateTouristPoint_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.content.UpdateTouristPoint(context.Background(), "missing",
		TouristPointInput{Category: "museu"}, []UploadFile{pngFile(t, "x.png")}, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.bucket.Len())
}

func TestDeleteTouristPoint_Soft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tp, err := f.content.CreateTouristPoint(ctx, minimalPoint("Passeio Público"),
		[]UploadFile{pngFile(t, "lago.png")}, "a")
	require.NoError(t, err)

	require.NoError(t, f.content.DeleteTouristPoint(ctx, tp.ID, "remover"))

	got, err := f.content.GetTouristPoint(ctx, tp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, "remover", *got.DeletedBy)
	assert.NotNil(t, got.DeletedAt)
	assert.Len(t, got.ImageURLs, 1)
	assert.Equal(t, 1, f.bucket.Len(), "images are kept")

	assert.ErrorIs(t, f.content.DeleteTouristPoint(ctx, "missing", "x"), ErrNotFound)
	_, err = f.content.GetTouristPoint(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTouristPoints_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := range 12 {
		tp, err := f.content.CreateTouristPoint(ctx, minimalPoint(fmt.Sprintf("Ponto %02d", i)), nil, "a")
		require.NoError(t, err)
		ids = append(ids, tp.ID)
	}

	items, page, err := f.content.ListTouristPoints(ctx, model.ListParams{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 1, Limit: 5, Total: 12, Pages: 3}, page)
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, ids[11-i], item.ID, "page 1 is newest first")
	}

	items, page, err = f.content.ListTouristPoints(ctx, model.ListParams{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(3), page.Pages)

	items, page, err = f.content.ListTouristPoints(ctx, model.ListParams{})
	require.NoError(t, err)
	assert.Len(t, items, model.DefaultLimit)
	assert.Equal(t, int64(2), page.Pages)
}

func TestListTouristPoints_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park, err := f.content.CreateTouristPoint(ctx, minimalPoint("Parque Tanguá"), nil, "a")
	require.NoError(t, err)
	museum := minimalPoint("Museu Paranaense")
	museum.Category = "museu"
	_, err = f.content.CreateTouristPoint(ctx, museum, nil, "a")
	require.NoError(t, err)
	require.NoError(t, f.content.DeleteTouristPoint(ctx, park.ID, "a"))

	items, page, err := f.content.ListTouristPoints(ctx, model.ListParams{Category: "parque"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), page.Total)

	items, _, err = f.content.ListTouristPoints(ctx, model.ListParams{Category: model.CategoryAll})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	active := true
	items, _, err = f.content.ListTouristPoints(ctx, model.ListParams{Active: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "museu", items[0].Category)
}

func TestListTouristPoints_SearchCoversWholeCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The match is the oldest record, so it is not on the first unfiltered page.
	target := minimalPoint("Jardim Botânico")
	target.Name.EN = "Botanical Garden"
	_, err := f.content.CreateTouristPoint(ctx, target, nil, "a")
	require.NoError(t, err)
	for i := range 6 {
		_, err := f.content.CreateTouristPoint(ctx, minimalPoint(fmt.Sprintf("Praça %d", i)), nil, "a")
		require.NoError(t, err)
	}

	for _, term := range []string{"BOTÂNICO", "botanical", "jardim"} {
		items, page, err := f.content.ListTouristPoints(ctx, model.ListParams{Page: 1, Limit: 3, Search: term})
		require.NoError(t, err, term)
		require.Len(t, items, 1, term)
		assert.Equal(t, "Jardim Botânico", items[0].Name.PT)
		assert.Equal(t, model.Pagination{Page: 1, Limit: 3, Total: 1, Pages: 1}, page)
	}

	// Description text is searched too.
	items, page, err := f.content.ListTouristPoints(ctx, model.ListParams{Limit: 4, Search: "descrição de praça"})
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, int64(6), page.Total)
	assert.Equal(t, int64(2), page.Pages)

	items, _, err = f.content.ListTouristPoints(ctx, model.ListParams{Page: 5, Limit: 4, Search: "praça"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListTouristPoints_PagePastTheEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.CreateTouristPoint(ctx, minimalPoint("Jardim Botânico"), nil, "a")
	require.NoError(t, err)

	for _, search := range []string{"", "jardim"} {
		for _, page := range []int{2, 1 << 62} {
			items, pg, err := f.content.ListTouristPoints(ctx, model.ListParams{Page: page, Limit: 3, Search: search})
			require.NoError(t, err, "search %q page %d", search, page)
			assert.Empty(t, items, "search %q page %d", search, page)
			assert.Equal(t, int64(1), pg.Total)
			assert.LessOrEqual(t, pg.Page, model.MaxPage)
		}
	}
}

func eventInput(title, start, end string) EventInput {
	return EventInput{
		Title:       model.Localized{PT: title},
		Description: model.Localized{PT: "Sobre " + title},
		StartDate:   start,
		EndDate:     end,
		Category:    "cultura",
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := eventInput("Festival de Teatro", "2025-03-25T19:30", "2025-04-06")
	in.IsFeatured = "true"
	in.Location = "Teatro Guaíra"
	in.TicketURL = "https://festivaldecuritiba.com.br"
	in.Latitude = "-25.43"

	e, err := f.content.CreateEvent(ctx, in, []UploadFile{pngFile(t, "cartaz.png")}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Festival de Teatro", e.Title.EN)
	assert.Equal(t, time.Date(2025, 3, 25, 19, 30, 0, 0, time.UTC), e.StartDate)
	assert.True(t, e.IsFeatured)
	assert.True(t, e.IsActive)
	require.NotNil(t, e.Location)
	assert.Equal(t, "Teatro Guaíra", *e.Location)
	require.NotNil(t, e.Latitude)
	assert.Nil(t, e.Longitude)
	assert.Len(t, e.ImageURLs, 1)
	assert.Contains(t, e.ImageURLs[0], "/events/")

	got, err := f.content.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.StartDate, got.StartDate.UTC())
	assert.Equal(t, *e.TicketURL, *got.TicketURL)

	_, err = f.content.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   EventInput
		want string
	}{
		{"missing category", func() EventInput {
			in := eventInput("Feira", "2025-01-01", "2025-01-02")
			in.Category = ""
			return in
		}(), MsgEventRequired},
		{"missing end", eventInput("Feira", "2025-01-01", ""), MsgEventRequired},
		{"bad date", eventInput("Feira", "01/01/2025", "2025-01-02"), MsgInvalidDates},
		{"end before start", eventInput("Feira", "2025-01-02", "2025-01-01"), MsgEndBeforeStart},
		{"bad ticket", func() EventInput {
			in := eventInput("Feira", "2025-01-01", "2025-01-02")
			in.TicketURL = "javascript:alert(1)"
			return in
		}(), MsgInvalidTicketURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.content.CreateEvent(ctx, tt.in, nil, "a")
			assert.Equal(t, tt.want, validationMessage(t, err))
		})
	}
}

func TestListEvents_OrderedByStartDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, start := range []string{"2025-05-01", "2025-09-01", "2025-01-01"} {
		_, err := f.content.CreateEvent(ctx, eventInput("Evento "+start, start, start), nil, "a")
		require.NoError(t, err)
	}

	items, page, err := f.content.ListEvents(ctx, model.ListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.Pages)
	require.Len(t, items, 2)
	assert.Equal(t, "Evento 2025-09-01", items[0].Title.PT)
	assert.Equal(t, "Evento 2025-05-01", items[1].Title.PT)

	items, page, err = f.content.ListEvents(ctx, model.ListParams{Search: "2025-01"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), page.Total)
}

func TestDeleteImage_Tracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tp, err := f.content.CreateTouristPoint(ctx, minimalPoint("Bosque Alemão"),
		[]UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png")}, "a")
	require.NoError(t, err)
	victim := tp.ImageURLs[0]

	key, err := f.content.DeleteImage(ctx, victim)
	require.NoError(t, err)
	_, exists := f.bucket.Get(key)
	assert.False(t, exists)

	got, err := f.content.GetTouristPoint(ctx, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StringList{tp.ImageURLs[1]}, got.ImageURLs)

	_, err = store.New(f.db).GetMediaObjectByURL(ctx, victim)
	assert.Error(t, err, "tracking row should be gone")
}

func TestDeleteImage_Untracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.DeleteImage(ctx, "  ")
	assert.Equal(t, MsgImageURLNeeded, validationMessage(t, err))

	require.NoError(t, f.bucket.Put(ctx, "events/legacy.png", model.MimeTypePNG, []byte("x")))
	key, err := f.content.DeleteImage(ctx, f.bucket.PublicURL("events/legacy.png"))
	require.NoError(t, err)
	assert.Equal(t, "events/legacy.png", key)
	assert.Zero(t, f.bucket.Len())

	_, err = f.content.DeleteImage(ctx, f.bucket.PublicURL("events/gone.png"))
	assert.ErrorIs(t, err, ErrNotFound)
}
