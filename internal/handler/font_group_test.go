package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dukerupert/fontgroup/internal/fontgroup"
	"github.com/dukerupert/fontgroup/internal/model"
)

func groupBody(title string, ids []int64, names ...string) string {
	rows := make([]map[string]any, len(ids))
	for i, id := range ids {
		rows[i] = map[string]any{
			"font_id":       id,
			"font_name":     names[i],
			"specific_size": 1.5,
			"price_change":  "2",
		}
	}
	b, _ := json.Marshal(map[string]any{"group_title": title, "fonts": rows})
	return string(b)
}

func createGroup(t *testing.T, env testEnv, body string) model.GroupSummary {
	t.Helper()
	rec := httptest.NewRecorder()
	env.groups.Create(rec, jsonRequest(http.MethodPost, "/api/create_font_group", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var g model.GroupSummary
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &g); err != nil {
		t.Fatalf("decode group: %v", err)
	}
	return g
}

func TestCreateGroupJSON(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")

	g := createGroup(t, env, groupBody("Headings", ids, "Alpha Bold", "Beta"))

	if g.Title != "Headings" {
		t.Errorf("title = %q, want Headings", g.Title)
	}
	if g.FontNames != "Alpha Bold,Beta" {
		t.Errorf("font_names = %q, want %q", g.FontNames, "Alpha Bold,Beta")
	}
	if g.FontIDs != fmt.Sprintf("%d,%d", ids[0], ids[1]) {
		t.Errorf("font_ids = %q", g.FontIDs)
	}
	if g.Count != 2 {
		t.Errorf("count = %d, want 2", g.Count)
	}
	if g.Fonts[0].SpecificSize != 1.5 || g.Fonts[0].PriceChange != 2 {
		t.Errorf("row values = %+v", g.Fonts[0])
	}
}

func TestCreateGroupForm(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")

	// The fonts field arrives as a JSON string inside a urlencoded form.
	fonts := fmt.Sprintf(`[{"font_id":"%d","font_name":"Alpha","specific_size":"","price_change":""},{"font_id":%d,"font_name":"Beta"}]`, ids[0], ids[1])
	form := url.Values{"group_title": {"  Body  "}, "fonts": {fonts}}
	req := httptest.NewRequest(http.MethodPost, "/api/create_font_group", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.groups.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var g model.GroupSummary
	json.Unmarshal(decodeResponse(t, rec).Data, &g)
	if g.Title != "Body" {
		t.Errorf("title = %q, want trimmed", g.Title)
	}
	for _, r := range g.Fonts {
		if r.SpecificSize != fontgroup.DefaultSpecificSize || r.PriceChange != fontgroup.DefaultPriceChange {
			t.Errorf("row %q = %v/%v, want defaults", r.FontName, r.SpecificSize, r.PriceChange)
		}
	}
}

func TestCreateGroupJSONStringFonts(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")

	inner := fmt.Sprintf(`[{"font_id":%d,"font_name":"A"},{"font_id":%d,"font_name":"B"}]`, ids[0], ids[1])
	b, _ := json.Marshal(map[string]string{"group_title": "Mixed", "fonts": inner})
	g := createGroup(t, env, string(b))
	if g.Count != 2 {
		t.Errorf("count = %d, want 2", g.Count)
	}
}

func TestCreateGroupRejected(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty title", groupBody("  ", ids, "A", "B"), fontgroup.ErrTitleRequired.Error()},
		{"title checked first", groupBody("", ids[:1], "A"), fontgroup.ErrTitleRequired.Error()},
		{"one font", groupBody("One", ids[:1], "A"), fontgroup.ErrTooFewFonts.Error()},
		{"blank name", groupBody("Blank", ids, "A", "  "), fontgroup.ErrTooFewFonts.Error()},
		{"no fonts field", `{"group_title":"Empty"}`, fontgroup.ErrTooFewFonts.Error()},
		{"unknown font", groupBody("Ghost", []int64{ids[0], 9999}, "A", "B"), "unknown font id 9999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.groups.Create(rec, jsonRequest(http.MethodPost, "/api/create_font_group", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := decodeResponse(t, rec).Message; msg != tt.want {
				t.Errorf("message = %q, want %q", msg, tt.want)
			}
		})
	}

	groups, _ := env.groupStore.List()
	if len(groups) != 0 {
		t.Errorf("stored %d groups, want 0", len(groups))
	}
}

func TestCreateGroupMalformed(t *testing.T) {
	env := setupHandlers(t)
	for _, body := range []string{`{`, `{"group_title":"x","fonts":[{"font_id":1.5,"font_name":"a"}]}`} {
		rec := httptest.NewRecorder()
		env.groups.Create(rec, jsonRequest(http.MethodPost, "/api/create_font_group", body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestUpdateGroup(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta", "Gamma")
	g := createGroup(t, env, groupBody("Headings", ids[:2], "Alpha", "Beta"))

	rec := httptest.NewRecorder()
	env.groups.Update(rec, jsonRequest(http.MethodPost, "/api/update_font_group?id="+itoa(g.ID),
		groupBody("Titles", []int64{ids[2], ids[0], ids[1]}, "Gamma", "Alpha", "Beta")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var updated model.GroupSummary
	json.Unmarshal(decodeResponse(t, rec).Data, &updated)
	if updated.ID != g.ID {
		t.Errorf("id = %d, want %d", updated.ID, g.ID)
	}
	if updated.Title != "Titles" || updated.FontNames != "Gamma,Alpha,Beta" {
		t.Errorf("updated = %q %q", updated.Title, updated.FontNames)
	}

	rec = httptest.NewRecorder()
	env.groups.Update(rec, jsonRequest(http.MethodPost, "/api/update_font_group?id=9999", groupBody("X", ids[:2], "A", "B")))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing group status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.groups.Update(rec, jsonRequest(http.MethodPost, "/api/update_font_group?id="+itoa(g.ID), groupBody("X", ids[:1], "A")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid update status = %d, want 400", rec.Code)
	}
	got, _ := env.groupStore.GetByID(g.ID)
	if got.Title != "Titles" || len(got.Rows) != 3 {
		t.Errorf("rejected update changed group: %q, %d rows", got.Title, len(got.Rows))
	}
}

func TestGetListDeleteGroup(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")
	g := createGroup(t, env, groupBody("Headings", ids, "Alpha", "Beta"))

	rec := httptest.NewRecorder()
	env.groups.Get(rec, httptest.NewRequest(http.MethodGet, "/api/edit_font_group?id="+itoa(g.ID), nil))
	var got model.GroupSummary
	json.Unmarshal(decodeResponse(t, rec).Data, &got)
	if got.Title != "Headings" || len(got.Fonts) != 2 {
		t.Errorf("get = %+v", got)
	}

	rec = httptest.NewRecorder()
	env.groups.List(rec, httptest.NewRequest(http.MethodGet, "/api/group_list", nil))
	var list []model.GroupSummary
	json.Unmarshal(decodeResponse(t, rec).Data, &list)
	if len(list) != 1 || list[0].Count != 2 {
		t.Errorf("list = %+v", list)
	}

	rec = httptest.NewRecorder()
	env.groups.Delete(rec, httptest.NewRequest(http.MethodGet, "/api/delete_group?id="+itoa(g.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.groups.Get(rec, httptest.NewRequest(http.MethodGet, "/api/edit_font_group?id="+itoa(g.ID), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rec.Code)
	}
	rec = httptest.NewRecorder()
	env.groups.Delete(rec, httptest.NewRequest(http.MethodPost, "/api/delete_group?id="+itoa(g.ID), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteFontShrinksGroup(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")
	g := createGroup(t, env, groupBody("Headings", ids, "Alpha", "Beta"))

	rec := httptest.NewRecorder()
	env.fonts.Delete(rec, httptest.NewRequest(http.MethodGet, "/api/delete_font?id="+itoa(ids[0]), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete font status = %d", rec.Code)
	}

	got, _ := env.groupStore.GetByID(g.ID)
	if got == nil || len(got.Rows) != 1 || got.Rows[0].FontID != ids[1] {
		t.Errorf("group after font delete = %+v", got)
	}
}

func TestCreateGroupRejectsNonFiniteNumbers(t *testing.T) {
	env := setupHandlers(t)
	ids := seedFonts(t, env, "Alpha", "Beta")

	for _, bad := range []string{"Inf", "-Infinity", "NaN"} {
		fonts := fmt.Sprintf(`[{"font_id":"%d","font_name":"A","specific_size":%q,"price_change":"0"},{"font_id":"%d","font_name":"B","specific_size":"1","price_change":"0"}]`, ids[0], bad, ids[1])
		form := url.Values{"group_title": {"Broken"}, "fonts": {fonts}}
		req := httptest.NewRequest(http.MethodPost, "/api/create_font_group", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.groups.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", bad, rec.Code)
			continue
		}
		if msg := decodeResponse(t, rec).Message; !strings.Contains(msg, "invalid number") {
			t.Errorf("%s: message = %q, want invalid number", bad, msg)
		}
	}

	rec := httptest.NewRecorder()
	env.groups.List(rec, httptest.NewRequest(http.MethodGet, "/api/group_list", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if resp := decodeResponse(t, rec); string(resp.Data) != "[]" {
		t.Errorf("list data = %s, want []", resp.Data)
	}
}
