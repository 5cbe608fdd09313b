package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emberhaus/internal/cache"
	"github.com/emberhaus/internal/config"
	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/handler"
	"github.com/emberhaus/internal/router"
	"github.com/emberhaus/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const adminPassword = "e2e-sauna-secret"

type e2eSuite struct {
	handler   http.Handler
	public    httpClient
	admin     httpClient
	baseURL   string
	uploadDir string
	published *db.JournalPost
	draft     *db.JournalPost
	event     *db.Event
	ritual    *db.Ritual
	about     *db.StandalonePage
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)
	suite.login(t)

	t.Run("public pages", suite.testPublicPages)
	t.Run("public api", suite.testPublicAPI)
	t.Run("admin apis", suite.testAdminAPIs)
	t.Run("admin pages", suite.testAdminPages)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "e2e.db"), nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	cfg := config.Defaults()
	cfg.SessionSecret = "e2e-session-secret-0123456789abcdef"
	cfg.SiteBaseURL = "http://emberhaus.test"
	cfg.UploadDir = t.TempDir()

	store := cache.NewMemory(time.Minute)
	api := handler.NewAPI(gdb, handler.Options{
		SiteName:          cfg.SiteName,
		SiteURL:           cfg.SiteBaseURL,
		UploadDir:         cfg.UploadDir,
		UploadURL:         cfg.UploadURLPath,
		AdminPasswordHash: hashed,
		Cache:             store,
	})
	r, err := router.SetupRouter(cfg, router.Deps{API: api, Cache: store})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	suite := &e2eSuite{
		handler:   r,
		public:    newLocalClient(r, false),
		admin:     newLocalClient(r, true),
		baseURL:   cfg.SiteBaseURL,
		uploadDir: cfg.UploadDir,
	}

	yes, no := true, false
	journal := service.NewJournalService(gdb)
	suite.published, err = journal.Create(service.JournalPostInput{
		Title:      strPtr("Why We Cold Plunge"),
		Excerpt:    strPtr("Two minutes that change the afternoon."),
		Content:    strPtr("<p>Start with <strong>breath</strong>.</p>"),
		Date:       strPtr("2025-05-20"),
		Categories: &[]string{"Cold Therapy"},
		Published:  &yes,
	})
	if err != nil {
		t.Fatalf("failed to seed published post: %v", err)
	}
	suite.draft, err = journal.Create(service.JournalPostInput{
		Title:     strPtr("Notes In Progress"),
		Published: &no,
	})
	if err != nil {
		t.Fatalf("failed to seed draft post: %v", err)
	}

	suite.event, err = service.NewEventService(gdb).Create(service.EventInput{
		Title:     strPtr("Full Moon Sauna"),
		Date:      strPtr(time.Now().AddDate(0, 1, 0).Format("2006-01-02")),
		Location:  strPtr("Harbour deck"),
		Published: &yes,
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	suite.ritual, err = service.NewRitualService(gdb).Create(service.RitualInput{
		Title:            strPtr("Birch Whisking"),
		ShortDescription: strPtr("Leaves, steam and rhythm."),
		Benefits:         &[]string{"Circulation"},
		Published:        &yes,
	})
	if err != nil {
		t.Fatalf("failed to seed ritual: %v", err)
	}

	suite.about, err = service.NewStandalonePageService(gdb).Create(service.StandalonePageInput{
		Title:     strPtr("Our Story"),
		Slug:      strPtr("about"),
		Content:   strPtr("<p>Founded beside the water.</p>"),
		Published: &yes,
	})
	if err != nil {
		t.Fatalf("failed to seed about page: %v", err)
	}

	return suite
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/login", map[string]interface{}{
		"password": adminPassword,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d body=%s", resp.StatusCode, readBody(t, resp))
	}
}

func (s *e2eSuite) testPublicPages(t *testing.T) {
	check := func(name, path string, code int, expect string) {
		t.Helper()
		resp := s.mustRequest(t, s.public, http.MethodGet, path, nil, nil)
		defer resp.Body.Close()
		body := readBody(t, resp)
		if resp.StatusCode != code {
			t.Fatalf("%s: expected status %d, got %d", name, code, resp.StatusCode)
		}
		if expect != "" && !strings.Contains(body, expect) {
			t.Fatalf("%s: response does not contain %q", name, expect)
		}
	}

	check("home", "/", http.StatusOK, "Emberhaus")
	check("events", "/events", http.StatusOK, "Full Moon Sauna")
	check("event detail", "/events/"+s.event.Slug, http.StatusOK, "Harbour deck")
	check("rituals", "/rituals", http.StatusOK, "Birch Whisking")
	check("ritual detail", "/rituals/"+s.ritual.Slug, http.StatusOK, "Circulation")
	check("journal", "/journal", http.StatusOK, "Why We Cold Plunge")
	check("journal category", "/journal?category=Cold+Therapy", http.StatusOK, "Why We Cold Plunge")
	check("journal post", "/journal/"+s.published.Slug, http.StatusOK, "breath")
	check("draft post", "/journal/"+s.draft.Slug, http.StatusNotFound, "")
	check("standalone page", "/about", http.StatusOK, "Founded beside the water.")
	check("unknown page", "/no-such-page", http.StatusNotFound, "Page not found")
	check("robots", "/robots.txt", http.StatusOK, "Sitemap: http://emberhaus.test/sitemap.xml")
	check("sitemap", "/sitemap.xml", http.StatusOK, "http://emberhaus.test/journal/"+s.published.Slug)
	check("static css", "/static/site.css", http.StatusOK, "")

	resp := s.mustRequest(t, s.public, http.MethodGet, "/sitemap.xml", nil, nil)
	if body := readBody(t, resp); strings.Contains(body, s.draft.Slug) {
		t.Fatalf("sitemap lists a draft: %s", body)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testPublicAPI(t *testing.T) {
	resp := s.mustRequest(t, s.public, http.MethodGet, "/api/journal", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list journal expected 200, got %d", resp.StatusCode)
	}
	var posts []service.JournalPostView
	decodeJSON(t, resp, &posts)
	if len(posts) != 1 || posts[0].Slug != s.published.Slug {
		t.Fatalf("public journal list should only hold the published post: %+v", posts)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/events/"+s.event.Slug, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get event by slug expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/journal/"+idStr(s.draft.ID), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("draft by id expected 404 for visitors, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.public, http.MethodPost, "/api/events", map[string]interface{}{"title": "Sneaky"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create expected 401, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testAdminAPIs(t *testing.T) {
	// 文章
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/journal", map[string]interface{}{
		"title":      "Salt Scrub Season",
		"content":    "<p>Coarse salt, warm skin.</p>",
		"categories": []string{"Rituals"},
		"author":     map[string]interface{}{"name": "Mira"},
		"published":  true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var post service.JournalPostView
	decodeJSON(t, resp, &post)
	if post.ID == 0 || post.Slug != "salt-scrub-season" || post.Author.Name != "Mira" {
		t.Fatalf("unexpected created post: %+v", post)
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/api/journal/"+idStr(post.ID), map[string]interface{}{
		"excerpt": "Coarse salt season is here.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update post expected 200, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &post)
	if post.Excerpt != "Coarse salt season is here." || post.Title != "Salt Scrub Season" {
		t.Fatalf("partial update lost fields: %+v", post)
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/journal", map[string]interface{}{
		"title": "Another", "slug": "salt-scrub-season",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate slug expected 409, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/api/journal", nil, nil)
	var all []service.JournalPostView
	decodeJSON(t, resp, &all)
	if len(all) != 3 {
		t.Fatalf("admin journal list expected 3 posts including the draft, got %d", len(all))
	}

	resp = s.mustRequest(t, s.admin, http.MethodDelete, "/api/journal/"+idStr(post.ID), nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete post expected 204, got %d", resp.StatusCode)
	}
	resp = s.mustRequest(t, s.admin, http.MethodGet, "/api/journal/"+idStr(post.ID), nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted post expected 404, got %d", resp.StatusCode)
	}

	// 活动与仪式
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/events", map[string]interface{}{
		"title": "Dawn Breathwork", "date": "2030-03-01", "capacity": 12, "price": "25",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create event expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/events", map[string]interface{}{"title": "Undated"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("event without date expected 400, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/api/rituals/"+idStr(s.ritual.ID), map[string]interface{}{
		"faq": []map[string]string{{"question": "How long?", "answer": "About an hour."}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update ritual expected 200, got %d", resp.StatusCode)
	}
	var ritual service.RitualView
	decodeJSON(t, resp, &ritual)
	if len(ritual.FAQ) != 1 || ritual.Benefits[0] != "Circulation" {
		t.Fatalf("ritual update mismatch: %+v", ritual)
	}

	// 首页区块
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/pages", map[string]interface{}{
		"page":           "home",
		"section":        "hero",
		"title":          "Heat, Cold, Rest",
		"overlayOpacity": 0.4,
		"content":        map[string]interface{}{"kind": "hero", "heading": "Heat, Cold, Rest", "videoUrl": "/uploads/hero.mp4"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create section expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/pages", map[string]interface{}{
		"page": "home", "section": "hero",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate section expected 409, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/", nil, nil)
	if body := readBody(t, resp); !strings.Contains(body, "/uploads/hero.mp4") {
		t.Fatalf("home page does not render the new hero video")
	}

	// 独立页面
	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/api/standalone-pages/"+idStr(s.about.ID), map[string]interface{}{
		"published": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unpublish page expected 200, got %d", resp.StatusCode)
	}
	resp = s.mustRequest(t, s.public, http.MethodGet, "/about", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unpublished page expected 404, got %d", resp.StatusCode)
	}

	// 统计与编辑器
	resp = s.mustRequest(t, s.admin, http.MethodGet, "/api/stats", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats expected 200, got %d", resp.StatusCode)
	}
	var stats map[string]interface{}
	decodeJSON(t, resp, &stats)
	if len(stats) == 0 {
		t.Fatalf("stats response is empty")
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/markup/preview", map[string]interface{}{
		"text": "**hot** stones <script>alert(1)</script>",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); strings.Contains(body, "<script>") || !strings.Contains(body, "strong") {
		t.Fatalf("unexpected preview body: %s", body)
	}

	resp = s.uploadTestImage(t)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload image expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
	var uploadResp struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	decodeJSON(t, resp, &uploadResp)
	if !strings.HasPrefix(uploadResp.URL, "/uploads/") || uploadResp.Width != 4 {
		t.Fatalf("unexpected upload response: %+v", uploadResp)
	}
	if _, err := os.Stat(filepath.Join(s.uploadDir, strings.TrimPrefix(uploadResp.URL, "/uploads/"))); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	resp = s.mustRequest(t, s.public, http.MethodGet, uploadResp.URL, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("uploaded file expected 200, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) testAdminPages(t *testing.T) {
	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/admin expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/admin", nil, nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("/admin without session expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/login" {
		t.Fatalf("unexpected redirect location %q", loc)
	}

	resp = s.mustRequest(t, s.admin, http.MethodPost, "/admin/logout", nil, map[string]string{"Accept": "application/json"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout expected 204, got %d", resp.StatusCode)
	}
	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/journal", map[string]interface{}{"title": "After Logout"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("create after logout expected 401, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) uploadTestImage(t *testing.T) *http.Response {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 90, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, "image", "ember.png"))
	partHeader.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(buf.Bytes()); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	headers := map[string]string{
		"Content-Type": writer.FormDataContentType(),
	}
	return s.mustRequest(t, s.admin, http.MethodPost, "/api/uploads", body, headers)
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func strPtr(s string) *string {
	return &s
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
